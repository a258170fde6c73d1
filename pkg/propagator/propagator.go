// Package propagator precomputes the per-plane Fresnel transfer functions
// and the shared band-limiting aperture mask, generalizing the teacher's
// per-scale shearlet generator precompute (pkg/shearlet/transform.go,
// initializeGenerators) from directional wavelet filters to the physics of
// defocus propagation.
package propagator

import (
	"math"
	"sync"

	"pewr/pkg/grid"
)

// q2 returns the squared spatial frequency at grid index (x, y) for a
// padding×padding grid with pixel pitch psize, using the centered wrap
// described in spec.md §3: DC sits at index 0, and indices are folded into
// signed frequency about the grid center before scaling.
func q2(x, y, padding int, psize float64) float64 {
	qx := coord(x, padding, psize)
	qy := coord(y, padding, psize)
	return qx*qx + qy*qy
}

func coord(i, padding int, psize float64) float64 {
	half := padding / 2
	wrapped := ((i+half)%padding + padding) % padding
	return float64(wrapped-half) / (float64(padding) * psize)
}

// Mask computes the top-hat aperture mask M[x,y] = (q²(x,y) <= qmax²) for a
// padding×padding grid, parallelized across rows.
func Mask(padding int, psize, qmax float64) *grid.Mask {
	m := grid.NewMask(padding)
	qmax2 := qmax * qmax

	var wg sync.WaitGroup
	for x := 0; x < padding; x++ {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			for y := 0; y < padding; y++ {
				m.Set(x, y, q2(x, y, padding, psize) <= qmax2)
			}
		}(x)
	}
	wg.Wait()

	return m
}

// Table computes the Fresnel propagator H_p for one plane's defocus value
// fval, over a padding×padding grid: H_p[x,y] = exp(-i·π·λ·f·q²(x,y)), which
// has unit modulus everywhere by construction. Parallelized across rows,
// matching the per-scale parallel generator construction the teacher used
// for shearlet filters.
func Table(padding int, psize, lambda, fval float64) *grid.Complex {
	h := grid.NewComplex(padding)

	var wg sync.WaitGroup
	for x := 0; x < padding; x++ {
		wg.Add(1)
		go func(x int) {
			defer wg.Done()
			for y := 0; y < padding; y++ {
				chi := math.Pi * lambda * fval * q2(x, y, padding, psize)
				h.Set(x, y, cmplxPolar(1, -chi))
			}
		}(x)
	}
	wg.Wait()

	return h
}

// Tables computes the Fresnel propagator for every defocus value in fvals,
// one goroutine per plane, mirroring the teacher's per-subset/per-quadrant
// fan-out in processSubVolumesInParallel.
func Tables(padding int, psize, lambda float64, fvals []float64) []*grid.Complex {
	tables := make([]*grid.Complex, len(fvals))

	var wg sync.WaitGroup
	for i, f := range fvals {
		wg.Add(1)
		go func(i int, f float64) {
			defer wg.Done()
			tables[i] = Table(padding, psize, lambda, f)
		}(i, f)
	}
	wg.Wait()

	return tables
}

func cmplxPolar(r, theta float64) complex128 {
	return complex(r*math.Cos(theta), r*math.Sin(theta))
}
