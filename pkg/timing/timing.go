// Package timing implements the optional per-stage wall-time accumulators
// enabled by the config file's verbose flag, grounded on the original's
// LapTime/timedelta[7] bookkeeping in original_source/pewr.cpp (the teacher
// has no analogous component — mrislicesto3d prints wall-clock totals with
// plain time.Since, never a per-stage breakdown).
package timing

import (
	"fmt"
	"io"
	"time"
)

// Stage names an iteration pipeline stage, in the order the original prints
// them.
type Stage int

const (
	Propagate Stage = iota
	InverseFFT
	ScaleSpace
	SubstituteAmplitude
	ForwardFFT
	BackpropagateAverage
	Output
	numStages
)

var stageNames = [numStages]string{
	Propagate:             "propagate",
	InverseFFT:            "inverse-fft",
	ScaleSpace:            "scale",
	SubstituteAmplitude:   "substitute-amplitude",
	ForwardFFT:            "forward-fft",
	BackpropagateAverage:  "backpropagate-average",
	Output:                "output",
}

// Accumulator tracks wall-time totals per stage since the last Reset, plus a
// lap timer used to measure the stage currently in progress.
type Accumulator struct {
	Enabled bool

	totals  [numStages]time.Duration
	lapFrom time.Time
}

// NewAccumulator constructs an Accumulator. When enabled is false, StartLap,
// Lap, Reset and Report are no-ops so callers don't need to branch on
// verbosity themselves.
func NewAccumulator(enabled bool) *Accumulator {
	a := &Accumulator{Enabled: enabled}
	a.StartLap()
	return a
}

// StartLap resets the lap timer to now.
func (a *Accumulator) StartLap() {
	if !a.Enabled {
		return
	}
	a.lapFrom = time.Now()
}

// Lap records the elapsed time since the last StartLap/Lap call against
// stage, then resets the lap timer, mirroring the original's LapTime()
// operator() which returns and resets in one call.
func (a *Accumulator) Lap(stage Stage) {
	if !a.Enabled {
		return
	}
	now := time.Now()
	a.totals[stage] += now.Sub(a.lapFrom)
	a.lapFrom = now
}

// Total returns the accumulated duration recorded against stage since the
// last Reset. It is exported for tests that need to confirm a stage was
// actually lapped rather than inspecting the formatted Report output.
func (a *Accumulator) Total(stage Stage) time.Duration {
	return a.totals[stage]
}

// Reset zeroes every stage total, called at the start of each iteration so
// totals report one iteration's breakdown rather than a running sum, as the
// original does with its per-iteration timedelta[7] array.
func (a *Accumulator) Reset() {
	if !a.Enabled {
		return
	}
	for i := range a.totals {
		a.totals[i] = 0
	}
	a.StartLap()
}

// Report writes the stage totals for the most recent iteration to w, in
// milliseconds, in stage order.
func (a *Accumulator) Report(w io.Writer, iter int) {
	if !a.Enabled {
		return
	}
	fmt.Fprintf(w, "iter %d:", iter)
	for s := Stage(0); s < numStages; s++ {
		fmt.Fprintf(w, " %s=%dms", stageNames[s], a.totals[s].Milliseconds())
	}
	fmt.Fprintln(w)
}
