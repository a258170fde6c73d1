// Package interrupt implements the publish-from-async-context,
// observe-cooperatively-between-iterations signal handling spec.md §4.7 and
// §9 describe: a single external interrupt requests graceful shutdown after
// the in-flight iteration; a second interrupt aborts immediately with a
// nonzero status. This generalizes the original's process-global
// `interrupted` bool set from a signal(2) handler (original_source/pewr.cpp)
// into an atomic flag with an injectable abort hook for testability.
package interrupt

import (
	"os"
	"os/signal"
	"sync/atomic"
)

// Watcher observes OS signals and publishes a single boolean flag for the
// reconstruction loop to poll between iterations.
type Watcher struct {
	flag  atomic.Bool
	abort func()

	sigs chan os.Signal
	stop chan struct{}
}

// New constructs a Watcher. abort is invoked on a second interrupt; pass nil
// to default to os.Exit(1), matching the original's exit(1) in its signal
// handler.
func New(abort func()) *Watcher {
	if abort == nil {
		abort = func() { os.Exit(1) }
	}
	return &Watcher{
		abort: abort,
		sigs:  make(chan os.Signal, 2),
		stop:  make(chan struct{}),
	}
}

// Start begins watching the given signals in a background goroutine. The
// first signal sets the flag; any further signal calls abort immediately.
func (w *Watcher) Start(sigs ...os.Signal) {
	signal.Notify(w.sigs, sigs...)
	go func() {
		for {
			select {
			case <-w.sigs:
				if w.flag.Swap(true) {
					w.abort()
					return
				}
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop releases the signal watcher. It does not clear the flag.
func (w *Watcher) Stop() {
	signal.Stop(w.sigs)
	close(w.stop)
}

// Interrupted reports whether an interrupt has been observed.
func (w *Watcher) Interrupted() bool { return w.flag.Load() }
