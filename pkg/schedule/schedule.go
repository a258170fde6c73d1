// Package schedule decides, per iteration, whether the current exit-wave
// estimate must be emitted. It is grounded directly on the inline cadence
// check in original_source/pewr.cpp (the outputfreq/outputgeom/outputlast
// disjunction and the geometric-threshold advance loop); the teacher has no
// analogous component, since mrislicesto3d emits intermediary results on a
// fixed per-stage basis rather than on a convergence-independent cadence.
package schedule

// Scheduler tracks the geometric output threshold across iterations and
// decides whether a given iteration should be emitted.
type Scheduler struct {
	OutputFreq int     // linear stride; 0 disables
	OutputGeom float64 // geometric ratio; 0 disables, must be > 1 otherwise
	OutputLast int      // always emit the last OutputLast iterations

	nextGeom float64
}

// New constructs a Scheduler. startIter is the iteration the run begins at
// (nonzero when resuming from a guess), used to prime the geometric
// threshold at the smallest power of outputGeom strictly greater than
// startIter, per spec.md §4.6.
func New(outputFreq int, outputGeom float64, outputLast int, startIter int) *Scheduler {
	s := &Scheduler{
		OutputFreq: outputFreq,
		OutputGeom: outputGeom,
		OutputLast: outputLast,
		nextGeom:   1,
	}
	if outputGeom > 0 {
		for s.nextGeom <= float64(startIter) {
			s.nextGeom *= outputGeom
		}
	}
	return s
}

// ShouldEmit reports whether iteration k (out of iters total) must be
// emitted, per spec.md §4.6. It also advances the geometric threshold past k
// when the geometric condition fires, exactly mirroring the original's
// "while(nextgeomoutput <= iter) nextgeomoutput *= outputgeom" loop.
func (s *Scheduler) ShouldEmit(k, iters int, interrupted bool) bool {
	emit := false

	if s.OutputFreq > 0 && k%s.OutputFreq == 0 {
		emit = true
	}
	if s.OutputGeom > 0 && float64(k) >= s.nextGeom {
		emit = true
	}
	if iters-k < s.OutputLast {
		emit = true
	}
	if interrupted {
		emit = true
	}

	if s.OutputGeom > 0 {
		for s.nextGeom <= float64(k) {
			s.nextGeom *= s.OutputGeom
		}
	}

	return emit
}
