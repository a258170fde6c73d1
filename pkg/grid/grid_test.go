package grid

import "testing"

func TestComplexSetAt(t *testing.T) {
	g := NewComplex(4)
	g.Set(1, 2, complex(3, 4))
	if v := g.At(1, 2); v != complex(3, 4) {
		t.Fatalf("At(1,2) = %v, want 3+4i", v)
	}
	if v := g.At(0, 0); v != 0 {
		t.Fatalf("At(0,0) = %v, want 0", v)
	}
}

func TestComplexScale(t *testing.T) {
	g := NewComplex(2)
	for i := range g.Raw() {
		g.Raw()[i] = complex(1, 1)
	}
	g.Scale(complex(2, 0))
	for _, v := range g.Raw() {
		if v != complex(2, 2) {
			t.Fatalf("Scale: got %v, want 2+2i", v)
		}
	}
}

func TestComplexCopyFrom(t *testing.T) {
	src := NewComplex(3)
	src.Set(2, 1, complex(5, -5))
	dst := NewComplex(3)
	dst.CopyFrom(src)
	if v := dst.At(2, 1); v != complex(5, -5) {
		t.Fatalf("CopyFrom: got %v, want 5-5i", v)
	}

	dst.Set(2, 1, 0)
	if v := src.At(2, 1); v != complex(5, -5) {
		t.Fatalf("CopyFrom must not alias src, but src changed to %v", v)
	}
}

func TestComplexZero(t *testing.T) {
	g := NewComplex(2)
	g.Set(0, 0, complex(1, 1))
	g.Zero()
	for _, v := range g.Raw() {
		if v != 0 {
			t.Fatalf("Zero: got %v, want 0", v)
		}
	}
}

func TestRealSetAt(t *testing.T) {
	g := NewReal(4)
	g.Set(3, 0, 9.5)
	if v := g.At(3, 0); v != 9.5 {
		t.Fatalf("At(3,0) = %v, want 9.5", v)
	}
}

func TestMaskSetAt(t *testing.T) {
	m := NewMask(4)
	if m.At(1, 1) {
		t.Fatalf("new mask should be all false")
	}
	m.Set(1, 1, true)
	if !m.At(1, 1) {
		t.Fatalf("Set(1,1,true) did not stick")
	}
	if m.At(0, 0) {
		t.Fatalf("Set(1,1,true) leaked to (0,0)")
	}
}
