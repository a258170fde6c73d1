// Package rawio decodes and encodes the headerless binary files described in
// spec.md §6: row-major S×S pixel arrays of a declared element type on
// input, and row-major P×P complex grids (two native floats per sample:
// float64 for output files, float64 or float32 for guess files) for guess
// and output files. It generalizes the teacher's image-specific
// loadImage/imageToFloat/floatToImage helpers (pkg/reconstruction/
// reconstructor.go), which only ever handled one concrete pixel format, to
// the eight element types spec.md's `type` config key names, and replaces
// JPEG with the original's raw binary convention (original_source/pewr.cpp,
// Plane::import/Plane::dump).
package rawio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"pewr/pkg/grid"
)

// PixelType names one of the raw element types a plane's intensity file may
// be stored as, matching spec.md §6's `type` config key.
type PixelType string

const (
	Uint8   PixelType = "uint8"
	Int8    PixelType = "int8"
	Uint16  PixelType = "uint16"
	Int16   PixelType = "int16"
	Uint32  PixelType = "uint32"
	Int32   PixelType = "int32"
	Float32 PixelType = "float"
	Float64 PixelType = "double"
)

// Valid reports whether t is one of the eight declared pixel element types.
func (t PixelType) Valid() bool {
	switch t {
	case Uint8, Int8, Uint16, Int16, Uint32, Int32, Float32, Float64:
		return true
	}
	return false
}

func (t PixelType) byteWidth() int {
	switch t {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// ReadIntensity decodes a row-major size×size array of raw pixel samples of
// the given type from r into a []float64, one sample per pixel, rows
// iterating the outer index (spec.md §6).
func ReadIntensity(r io.Reader, size int, t PixelType) ([]float64, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("rawio: unknown pixel type %q", t)
	}

	n := size * size
	width := t.byteWidth()
	buf := make([]byte, n*width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("rawio: failed to read %d %s samples: %v", n, t, err)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = decodeSample(buf[i*width:(i+1)*width], t)
	}
	return out, nil
}

func decodeSample(b []byte, t PixelType) float64 {
	switch t {
	case Uint8:
		return float64(b[0])
	case Int8:
		return float64(int8(b[0]))
	case Uint16:
		return float64(binary.LittleEndian.Uint16(b))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case Uint32:
		return float64(binary.LittleEndian.Uint32(b))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// ReadComplexGrid decodes a row-major padding×padding grid of complex128
// samples from r, two native floats (real then imaginary) per sample, at
// the given element width (4 bytes for float32, 8 for float64), matching
// the guess-file format of spec.md §4.5/§9.
func ReadComplexGrid(r io.Reader, padding int, wide bool) (*grid.Complex, error) {
	g := grid.NewComplex(padding)
	n := padding * padding

	width := 8
	if wide {
		width = 16
	}
	buf := make([]byte, n*width)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("rawio: failed to read %d complex samples: %v", n, err)
	}

	data := g.Raw()
	for i := 0; i < n; i++ {
		sample := buf[i*width : (i+1)*width]
		var re, im float64
		if wide {
			re = math.Float64frombits(binary.LittleEndian.Uint64(sample[0:8]))
			im = math.Float64frombits(binary.LittleEndian.Uint64(sample[8:16]))
		} else {
			re = float64(math.Float32frombits(binary.LittleEndian.Uint32(sample[0:4])))
			im = float64(math.Float32frombits(binary.LittleEndian.Uint32(sample[4:8])))
		}
		data[i] = complex(re, im)
	}
	return g, nil
}

// WriteComplexGrid encodes g row-major to w as native float64 pairs (real
// then imaginary), no header, per spec.md §6's output file format.
func WriteComplexGrid(w io.Writer, g *grid.Complex) error {
	data := g.Raw()
	buf := make([]byte, len(data)*16)
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*16:i*16+8], math.Float64bits(real(v)))
		binary.LittleEndian.PutUint64(buf[i*16+8:i*16+16], math.Float64bits(imag(v)))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("rawio: failed to write complex grid: %v", err)
	}
	return nil
}
