package interrupt

import (
	"os"
	"testing"
	"time"
)

func TestFirstSignalSetsFlag(t *testing.T) {
	w := New(func() { t.Fatalf("abort must not run on the first signal") })
	w.Start(os.Interrupt)
	defer w.Stop()

	if w.Interrupted() {
		t.Fatalf("flag set before any signal")
	}

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess: %v", err)
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		t.Fatalf("Signal: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if w.Interrupted() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("flag was not set within the deadline")
}

func TestSecondSignalCallsAbort(t *testing.T) {
	aborted := make(chan struct{}, 1)
	w := New(func() { aborted <- struct{}{} })
	w.Start(os.Interrupt)
	defer w.Stop()

	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("FindProcess: %v", err)
	}
	proc.Signal(os.Interrupt)
	time.Sleep(10 * time.Millisecond)
	proc.Signal(os.Interrupt)

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatalf("abort was not called after a second signal")
	}
}
