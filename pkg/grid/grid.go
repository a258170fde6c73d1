// Package grid implements the fixed-size 2D sample arrays the reconstruction
// pipeline is built from: padded complex working buffers, real amplitude
// images, and the boolean aperture mask.
package grid

// Complex is a square P×P grid of complex128 samples stored row-major with
// no padding between rows, so its backing slice can be handed directly to an
// FFT engine. Callers guarantee indices are in range; there is no bounds
// checking on the hot paths.
type Complex struct {
	n    int
	data []complex128
}

// NewComplex allocates an n×n complex grid, zeroed.
func NewComplex(n int) *Complex {
	return &Complex{n: n, data: make([]complex128, n*n)}
}

// N returns the side length of the grid.
func (g *Complex) N() int { return g.n }

// At returns the sample at (x, y).
func (g *Complex) At(x, y int) complex128 { return g.data[x*g.n+y] }

// Set stores a sample at (x, y).
func (g *Complex) Set(x, y int, v complex128) { g.data[x*g.n+y] = v }

// Raw returns the underlying row-major slice, for FFT binding or bulk
// element-wise loops. The slice aliases the grid; writing through it mutates
// the grid in place.
func (g *Complex) Raw() []complex128 { return g.data }

// Scale multiplies every sample in place by s.
func (g *Complex) Scale(s complex128) {
	for i := range g.data {
		g.data[i] *= s
	}
}

// CopyFrom overwrites g's contents with src's. Both grids must have the same
// size.
func (g *Complex) CopyFrom(src *Complex) {
	copy(g.data, src.data)
}

// Zero sets every sample to 0.
func (g *Complex) Zero() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// Real is a square n×n grid of float64 samples, used for measured amplitude
// images (n == S) and for scratch real-valued data.
type Real struct {
	n    int
	data []float64
}

// NewReal allocates an n×n real grid, zeroed.
func NewReal(n int) *Real {
	return &Real{n: n, data: make([]float64, n*n)}
}

// N returns the side length of the grid.
func (g *Real) N() int { return g.n }

// At returns the sample at (x, y).
func (g *Real) At(x, y int) float64 { return g.data[x*g.n+y] }

// Set stores a sample at (x, y).
func (g *Real) Set(x, y int, v float64) { g.data[x*g.n+y] = v }

// Raw returns the underlying row-major slice.
func (g *Real) Raw() []float64 { return g.data }

// Mask is a square n×n grid of booleans, used for the band-limiting
// aperture mask. It is immutable after precomputation.
type Mask struct {
	n    int
	data []bool
}

// NewMask allocates an n×n mask, all false.
func NewMask(n int) *Mask {
	return &Mask{n: n, data: make([]bool, n*n)}
}

// N returns the side length of the mask.
func (g *Mask) N() int { return g.n }

// At reports whether (x, y) is inside the mask.
func (g *Mask) At(x, y int) bool { return g.data[x*g.n+y] }

// Set stores whether (x, y) is inside the mask.
func (g *Mask) Set(x, y int, v bool) { g.data[x*g.n+y] = v }
