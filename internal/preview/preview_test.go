package preview

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"pewr/pkg/grid"
)

func TestWriteProducesDecodableJPEG(t *testing.T) {
	const size = 4
	g := grid.NewComplex(size)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			g.Set(x, y, complex(float64(x+y), 0))
		}
	}

	path := filepath.Join(t.TempDir(), "preview.jpg")
	if err := Write(path, g, size); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	bounds := img.Bounds()
	if bounds != image.Rect(0, 0, size, size) {
		t.Fatalf("bounds = %v, want %v", bounds, image.Rect(0, 0, size, size))
	}
}

func TestWriteAllZeroAmplitude(t *testing.T) {
	const size = 2
	g := grid.NewComplex(size)
	path := filepath.Join(t.TempDir(), "zero.jpg")
	if err := Write(path, g, size); err != nil {
		t.Fatalf("Write with all-zero amplitude should not divide by zero: %v", err)
	}
}
