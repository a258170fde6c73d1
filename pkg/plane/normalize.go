package plane

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"pewr/pkg/grid"
)

// Normalize converts N raw intensity images into the amplitude images
// spec.md §3 defines: A_p = sqrt(|I_p| / μ), where μ is the mean raw
// intensity averaged across all N planes. It mirrors the original's
// two-pass normalization (PEWR::PEWR in pewr.cpp): first the mean of each
// plane's own mean intensity, then each plane scaled by 1/μ before the
// square root is taken.
//
// Normalize reports the computed μ alongside the amplitude grids so the
// caller can detect the numerical-degenerate case (μ == 0, spec.md §7) and
// fail before allocating anything iteration-related.
func Normalize(rawIntensities [][]float64, size int) (amplitudes []*grid.Real, mu float64) {
	perPlaneMeans := make([]float64, len(rawIntensities))
	for i, raw := range rawIntensities {
		perPlaneMeans[i] = stat.Mean(raw, nil)
	}
	mu = stat.Mean(perPlaneMeans, nil)

	amplitudes = make([]*grid.Real, len(rawIntensities))
	for i, raw := range rawIntensities {
		g := grid.NewReal(size)
		data := g.Raw()
		for idx, v := range raw {
			intensity := v
			if intensity < 0 {
				intensity = -intensity
			}
			ratio := 0.0
			if mu != 0 {
				ratio = intensity / mu
			}
			if ratio < 0 {
				ratio = 0
			}
			data[idx] = math.Sqrt(ratio)
		}
		amplitudes[i] = g
	}

	return amplitudes, mu
}
