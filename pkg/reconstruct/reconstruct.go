// Package reconstruct drives the PEWR iteration loop: it owns the current
// best-guess exit wave, the aperture mask, the set of planes, and the
// convergence-independent output scheduling and graceful interruption
// spec.md §4.5-§4.7 describe. It generalizes the teacher's Reconstructor
// (pkg/reconstruction/reconstructor.go), which drove an analogous six-step
// pipeline (load, denoise, divide, process-in-parallel, merge, validate)
// with the same Process()-method-per-stage shape and the same
// channel-based fan-out/fan-in for per-unit parallel work
// (processSubVolumesInParallel).
package reconstruct

import (
	"fmt"
	"math/cmplx"
	"os"

	"pewr/internal/preview"
	"pewr/pkg/fft"
	"pewr/pkg/grid"
	"pewr/pkg/plane"
	"pewr/pkg/schedule"
	"pewr/pkg/timing"
)

// Emitter receives one emitted exit-wave estimate (already inverse-FFT'd to
// space domain and normalized) at iteration k. ew aliases a Reconstructor
// scratch buffer that is overwritten on the next call; Emit must not retain
// it past return.
type Emitter interface {
	Emit(k int, ew *grid.Complex) error
}

// Params configures a Reconstructor. All fields are immutable after New.
type Params struct {
	Size    int // S, unpadded side
	Padding int // P, padded side

	OutputFreq int
	OutputGeom float64
	OutputLast int

	Verbose     bool
	PreviewPath string // file prefix for verbose-mode amplitude previews (<prefix>.<k>.jpg); empty disables them
}

// Reconstructor owns the shared exit-wave estimate and drives the iteration
// loop across a fixed set of planes.
type Reconstructor struct {
	params Params

	mask   *grid.Mask
	planes []*plane.Plane

	ewf *grid.Complex // frequency domain, authoritative between iterations

	scratch    *grid.Complex // space domain, used transiently by Init/emitAt
	scratchFwd *fft.Engine   // scratch: space -> frequency
	scratchBwd *fft.Engine   // scratch: frequency -> space

	sched *schedule.Scheduler
	timer *timing.Accumulator

	iter int // last completed iteration; 0 before Init
}

// New constructs a Reconstructor over the given planes and aperture mask.
// mask and every plane's Padding must equal params.Padding.
func New(params Params, mask *grid.Mask, planes []*plane.Plane) *Reconstructor {
	ewf := grid.NewComplex(params.Padding)
	scratch := grid.NewComplex(params.Padding)

	return &Reconstructor{
		params:     params,
		mask:       mask,
		planes:     planes,
		ewf:        ewf,
		scratch:    scratch,
		scratchFwd: fft.New(scratch, fft.Forward),
		scratchBwd: fft.New(scratch, fft.Backward),
		timer:      timing.NewAccumulator(params.Verbose),
	}
}

// EWF returns the current frequency-domain exit-wave estimate. The returned
// grid aliases the Reconstructor's internal state; callers must not mutate
// it.
func (r *Reconstructor) EWF() *grid.Complex { return r.ewf }

// Iteration returns the last completed iteration index.
func (r *Reconstructor) Iteration() int { return r.iter }

// Init establishes the starting exit-wave estimate. If guess is nil, EW is
// set to a uniform 1+0i and forward-FFT'd into EWF, and the run starts at
// iteration 0. If guess is non-nil, it is taken as the starting space-domain
// EW and forward-FFT'd, and the run starts at startIter (spec.md §4.5).
func (r *Reconstructor) Init(guess *grid.Complex, startIter int) {
	if guess == nil {
		data := r.scratch.Raw()
		for i := range data {
			data[i] = 1
		}
		startIter = 0
	} else {
		r.scratch.CopyFrom(guess)
	}

	r.scratchFwd.Execute()
	r.ewf.CopyFrom(r.scratch)

	r.iter = startIter
	r.sched = schedule.New(r.params.OutputFreq, r.params.OutputGeom, r.params.OutputLast, startIter)
}

// Run advances the reconstruction through iterations r.iter+1..iters,
// calling emit.Emit whenever the output scheduler (or an interrupt)
// requires an emission, and stopping early after emitting once more if
// interrupted() becomes true mid-run (spec.md §4.7). Run must be called
// after Init.
func (r *Reconstructor) Run(iters int, interrupted func() bool, emit Emitter) error {
	for k := r.iter + 1; k <= iters; k++ {
		r.timer.Reset()

		r.iterate()
		r.iter = k

		wasInterrupted := interrupted != nil && interrupted()
		if r.sched.ShouldEmit(k, iters, wasInterrupted) {
			if err := r.emitAt(k, emit); err != nil {
				return err
			}
		}
		r.timer.Lap(timing.Output)

		if r.params.Verbose {
			r.timer.Report(os.Stdout, k)
		}

		if wasInterrupted {
			return nil
		}
	}
	return nil
}

// iterate runs one Stage A-E sweep, advancing EWF in place.
func (r *Reconstructor) iterate() {
	r.stageAD()
	r.timer.Lap(timing.ForwardFFT)

	r.stageE()
	r.timer.Lap(timing.BackpropagateAverage)
}

// stageAD runs stages A through D (propagate, inverse-FFT, substitute
// amplitude, forward-FFT) for every plane in parallel, one goroutine per
// plane, mirroring the teacher's processSubVolumesInParallel fan-out. Plane 0
// laps the Accumulator at each sub-stage boundary; the other planes'
// goroutines run the same steps without touching the timer, since Accumulator
// isn't safe for concurrent Lap calls. Plane 0's timings stand in for the
// whole batch, matching the original's single-threaded per-iteration
// timedelta[0..3] breakdown closely enough to be useful in verbose mode.
func (r *Reconstructor) stageAD() {
	done := make(chan struct{}, len(r.planes))
	for i, p := range r.planes {
		go func(i int, p *plane.Plane) {
			trace := i == 0

			r.propagateToPlane(p)
			if trace {
				r.timer.Lap(timing.Propagate)
			}

			p.InverseFFT()
			if trace {
				r.timer.Lap(timing.InverseFFT)
			}

			scaleInPlace(p.Working, 1/float64(r.params.Padding*r.params.Padding))
			if trace {
				r.timer.Lap(timing.ScaleSpace)
			}

			substituteAmplitude(p.Working, p.Amplitude, p.Size)
			if trace {
				r.timer.Lap(timing.SubstituteAmplitude)
			}

			p.ForwardFFT()
			done <- struct{}{}
		}(i, p)
	}
	for range r.planes {
		<-done
	}
}

// propagateToPlane implements Stage A for one plane: W_p = EWF * H_p inside
// the aperture, 0 outside.
func (r *Reconstructor) propagateToPlane(p *plane.Plane) {
	n := r.params.Padding
	ewfData := r.ewf.Raw()
	propData := p.Prop.Raw()
	workData := p.Working.Raw()

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			idx := x*n + y
			if r.mask.At(x, y) {
				workData[idx] = ewfData[idx] * propData[idx]
			} else {
				workData[idx] = 0
			}
		}
	}
}

// substituteAmplitude implements Stage C: on the unpadded interior
// [0,size)×[0,size), replace each sample's magnitude with the plane's
// measured amplitude while preserving its phase; outside the interior the
// propagated value from Stage B is left untouched.
func substituteAmplitude(w *grid.Complex, amp *grid.Real, size int) {
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			v := w.At(x, y)
			phase := phaseOf(v)
			w.Set(x, y, polar(amp.At(x, y), phase))
		}
	}
}

// stageE implements Stage E: back-propagate and average every plane's
// post-substitution frequency estimate into EWF, parallelized across rows.
// The per-pixel reduction across planes runs in plane-index order inside
// one goroutine per row, so results are bit-deterministic for a fixed
// number of planes regardless of how many goroutines run concurrently
// (spec.md §5, §9).
func (r *Reconstructor) stageE() {
	n := r.params.Padding
	nplanes := len(r.planes)
	ewfData := r.ewf.Raw()

	done := make(chan struct{}, n)
	for x := 0; x < n; x++ {
		go func(x int) {
			for y := 0; y < n; y++ {
				idx := x*n + y
				if !r.mask.At(x, y) {
					ewfData[idx] = 0
					continue
				}
				var sum complex128
				for p := 0; p < nplanes; p++ {
					pl := r.planes[p]
					sum += pl.Working.Raw()[idx] * conj(pl.Prop.Raw()[idx])
				}
				ewfData[idx] = sum / complex(float64(nplanes), 0)
			}
			done <- struct{}{}
		}(x)
	}
	for x := 0; x < n; x++ {
		<-done
	}
}

// emitAt copies EWF into the scratch buffer, inverse-FFTs it to space
// domain, scales by 1/(P*P), and hands the result to emit, per spec.md
// §4.6. The scratch buffer's bound engines stay pinned to scratch; EWF
// itself is never touched.
func (r *Reconstructor) emitAt(k int, emit Emitter) error {
	r.scratch.CopyFrom(r.ewf)
	r.scratchBwd.Execute()
	scaleInPlace(r.scratch, 1/float64(r.params.Padding*r.params.Padding))

	if err := emit.Emit(k, r.scratch); err != nil {
		return fmt.Errorf("reconstruct: emit iteration %d: %v", k, err)
	}

	if r.params.Verbose && r.params.PreviewPath != "" {
		path := fmt.Sprintf("%s.%d.jpg", r.params.PreviewPath, k)
		if err := preview.Write(path, r.scratch, r.params.Size); err != nil {
			return fmt.Errorf("reconstruct: write preview iteration %d: %v", k, err)
		}
	}

	return nil
}

func scaleInPlace(g *grid.Complex, s float64) {
	data := g.Raw()
	factor := complex(s, 0)
	for i := range data {
		data[i] *= factor
	}
}

func conj(v complex128) complex128 { return complex(real(v), -imag(v)) }

func phaseOf(v complex128) float64 { return cmplx.Phase(v) }

func polar(r, theta float64) complex128 { return cmplx.Rect(r, theta) }
