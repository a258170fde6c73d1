// Package fft wraps gonum's complex-to-complex discrete Fourier transform
// into a 2D engine bound to a specific grid, generalizing the row/column
// pass structure the teacher used for its 2D shearlet transform
// (pkg/shearlet/fft2D) from a real-input row pass + hand-rolled recursive
// complex column pass into a uniform complex-to-complex engine usable in
// both directions.
package fft

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"pewr/pkg/grid"
)

// Direction selects which way an Engine transforms its bound grid.
type Direction int

const (
	// Forward transforms space domain to frequency domain.
	Forward Direction = iota
	// Backward transforms frequency domain to space domain.
	Backward
)

// Engine performs an in-place 2D complex DFT over a grid it is bound to at
// construction. Per spec, execution does not normalize: a round trip of a
// Forward engine followed by a Backward engine over the same grid recovers
// the original values scaled by P·P, and callers must divide by P·P
// themselves. An Engine is pinned to the grid passed to New; if that grid is
// replaced by a new allocation the Engine must be reconstructed, not reused.
type Engine struct {
	g    *grid.Complex
	dir  Direction
	plan   *fourier.CmplxFFT
	row    []complex128
	colIn  []complex128
	colOut []complex128
}

// New constructs an Engine bound to g that transforms in the given
// direction. The plan is created once here; Execute reuses it.
func New(g *grid.Complex, dir Direction) *Engine {
	n := g.N()
	return &Engine{
		g:      g,
		dir:    dir,
		plan:   fourier.NewCmplxFFT(n),
		row:    make([]complex128, n),
		colIn:  make([]complex128, n),
		colOut: make([]complex128, n),
	}
}

// Execute runs the transform over the bound grid in place. The 2D DFT is
// separable: it is computed as a 1D transform over every row followed by a
// 1D transform over every column of the row-transformed result, matching
// the structure of pkg/shearlet/fft2D.
func (e *Engine) Execute() {
	n := e.g.N()
	data := e.g.Raw()

	for x := 0; x < n; x++ {
		row := data[x*n : x*n+n]
		e.transform1D(row, e.row)
		copy(row, e.row)
	}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			e.colIn[x] = data[x*n+y]
		}
		e.transform1D(e.colIn, e.colOut)
		for x := 0; x < n; x++ {
			data[x*n+y] = e.colOut[x]
		}
	}
}

func (e *Engine) transform1D(src, dst []complex128) {
	if e.dir == Forward {
		e.plan.Coefficients(dst, src)
	} else {
		e.plan.Sequence(dst, src)
	}
}
