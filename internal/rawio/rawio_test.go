package rawio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"pewr/pkg/grid"
)

func TestReadIntensityUint8(t *testing.T) {
	buf := []byte{0, 1, 254, 255}
	got, err := ReadIntensity(bytes.NewReader(buf), 2, Uint8)
	if err != nil {
		t.Fatalf("ReadIntensity: %v", err)
	}
	want := []float64{0, 1, 254, 255}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("sample %d = %v, want %v", i, got[i], v)
		}
	}
}

func TestReadIntensityInt16(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int16{-300, 300, -1, 1} {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	got, err := ReadIntensity(&buf, 2, Int16)
	if err != nil {
		t.Fatalf("ReadIntensity: %v", err)
	}
	if got[0] != -300 || got[1] != 300 || got[2] != -1 || got[3] != 1 {
		t.Fatalf("got %v, want [-300 300 -1 1]", got)
	}
}

func TestReadIntensityFloat64(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(3.25))
	got, err := ReadIntensity(&buf, 1, Float64)
	if err != nil {
		t.Fatalf("ReadIntensity: %v", err)
	}
	if got[0] != 3.25 {
		t.Fatalf("got %v, want 3.25", got[0])
	}
}

func TestReadIntensityUnknownType(t *testing.T) {
	if _, err := ReadIntensity(bytes.NewReader(nil), 1, PixelType("bogus")); err == nil {
		t.Fatalf("expected an error for an unknown pixel type")
	}
}

func TestReadIntensityTruncated(t *testing.T) {
	if _, err := ReadIntensity(bytes.NewReader([]byte{1, 2}), 2, Uint8); err == nil {
		t.Fatalf("expected an error for a truncated read")
	}
}

func TestComplexGridRoundTrip(t *testing.T) {
	g := grid.NewComplex(4)
	for i := range g.Raw() {
		g.Raw()[i] = complex(float64(i), -float64(i))
	}

	var buf bytes.Buffer
	if err := WriteComplexGrid(&buf, g); err != nil {
		t.Fatalf("WriteComplexGrid: %v", err)
	}

	got, err := ReadComplexGrid(&buf, 4, true)
	if err != nil {
		t.Fatalf("ReadComplexGrid: %v", err)
	}
	for i, want := range g.Raw() {
		if got.Raw()[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, got.Raw()[i], want)
		}
	}
}

func TestComplexGridNarrowWidth(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, math.Float32bits(1.5))
	binary.Write(&buf, binary.LittleEndian, math.Float32bits(-2.5))

	got, err := ReadComplexGrid(&buf, 1, false)
	if err != nil {
		t.Fatalf("ReadComplexGrid: %v", err)
	}
	if got.At(0, 0) != complex(1.5, -2.5) {
		t.Fatalf("got %v, want 1.5-2.5i", got.At(0, 0))
	}
}
