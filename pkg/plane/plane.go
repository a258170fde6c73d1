// Package plane holds one focal-series observation: its measured amplitude
// image, defocus value, precomputed propagator, and the working buffer and
// bound FFT engines used to propagate the shared exit-wave estimate to this
// plane and back. This generalizes the teacher's per-slice state in
// pkg/reconstruction/reconstructor.go into a standalone, non-movable type
// once constructed (per spec.md §9, a Plane's FFT plans are pinned to its
// own working buffer).
package plane

import (
	"pewr/pkg/fft"
	"pewr/pkg/grid"
)

// Plane is one observation in the focal series.
type Plane struct {
	Size    int // S, unpadded side
	Padding int // P, padded side
	Defocus float64

	Amplitude *grid.Real    // A_p, S×S, immutable after setup
	Prop      *grid.Complex // H_p, P×P, immutable after setup
	Working   *grid.Complex // W_p, P×P, mutated only by the iteration loop

	fwd *fft.Engine // space -> frequency, bound to Working
	bwd *fft.Engine // frequency -> space, bound to Working
}

// New constructs a Plane with the given unpadded/padded sizes and defocus
// value. The amplitude image and propagator are supplied by the caller
// (amplitude normalization needs the mean intensity across every plane, and
// propagator precomputation is shared infrastructure in pkg/propagator), so
// New only wires up the working buffer and its pinned FFT engines.
func New(size, padding int, defocus float64, amplitude *grid.Real, prop *grid.Complex) *Plane {
	working := grid.NewComplex(padding)
	return &Plane{
		Size:      size,
		Padding:   padding,
		Defocus:   defocus,
		Amplitude: amplitude,
		Prop:      prop,
		Working:   working,
		fwd:       fft.New(working, fft.Forward),
		bwd:       fft.New(working, fft.Backward),
	}
}

// InverseFFT runs the plane's backward engine over its working buffer
// (frequency -> space), unnormalized.
func (p *Plane) InverseFFT() { p.bwd.Execute() }

// ForwardFFT runs the plane's forward engine over its working buffer
// (space -> frequency), unnormalized.
func (p *Plane) ForwardFFT() { p.fwd.Execute() }
