// Package preview writes a grayscale JPEG of an exit-wave estimate's
// amplitude for quick visual inspection during verbose runs. It has no
// effect on the algorithm; it is adapted from the teacher's
// pkg/visualization.Viewer.SaveSlice, which converted a 3D volume slice to a
// JPEG the same way.
package preview

import (
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"math/cmplx"
	"os"

	"pewr/pkg/grid"
)

// Write renders the amplitude |g[x,y]| of the size×size unpadded interior of
// g as a grayscale JPEG at path, normalizing by the maximum amplitude found.
func Write(path string, g *grid.Complex, size int) error {
	img := image.NewGray(image.Rect(0, 0, size, size))

	maxAmp := 0.0
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			a := cmplx.Abs(g.At(x, y))
			if a > maxAmp {
				maxAmp = a
			}
		}
	}

	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			v := 0.0
			if maxAmp > 0 {
				v = cmplx.Abs(g.At(x, y)) / maxAmp
			}
			gray := uint8(math.Max(0, math.Min(255, v*255)))
			img.SetGray(y, x, color.Gray{Y: gray})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}
