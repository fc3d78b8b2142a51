package cusp

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestGemmDense(t *testing.T) {
	a := makeDense(t, 2, 3, []float32{
		1, 2, 3,
		4, 5, 6,
	})
	b := makeDense(t, 3, 2, []float32{
		7, 8,
		9, 10,
		11, 12,
	})
	c := makeDense(t, 2, 2, zeros(4))
	if err := GemmDense(false, false, 1, a, b, 0, c); err != nil {
		t.Fatalf("GemmDense: %v", err)
	}
	want := []float32{
		58, 64,
		139, 154,
	}
	expectValues(t, "A*B", c.Float32(), want, 1e-4)

	if err := GemmDense(false, false, 1, a, a, 0, c); err != ErrShapeMismatch {
		t.Errorf("GemmDense 2x3 * 2x3 = %v, want ErrShapeMismatch", err)
	}
}

func TestDenseAddScaled(t *testing.T) {
	d := makeDense(t, 2, 2, []float32{1, 2, 3, 4})
	a := makeDense(t, 2, 2, []float32{10, 10, 10, 10})
	if err := d.AddScaled(0.5, a); err != nil {
		t.Fatalf("AddScaled: %v", err)
	}
	expectValues(t, "d + 0.5a", d.Float32(), []float32{6, 7, 8, 9}, 1e-6)
}

func TestGonumBridge(t *testing.T) {
	d := makeDense(t, 2, 2, []float32{1, 2, 3, 4})
	g := d.ToGonum()
	if g.At(1, 0) != 3 {
		t.Errorf("ToGonum At(1,0) = %g, want 3", g.At(1, 0))
	}

	back, err := DenseFromGonum(g)
	if err != nil {
		t.Fatalf("DenseFromGonum: %v", err)
	}
	defer back.Release()
	expectValues(t, "round trip", back.Float32(), d.Float32(), 0)

	scaled := mat.NewDense(2, 2, nil)
	scaled.Scale(2, g)
	d2, err := DenseFromGonum(scaled)
	if err != nil {
		t.Fatalf("DenseFromGonum: %v", err)
	}
	defer d2.Release()
	expectValues(t, "scaled", d2.Float32(), []float32{2, 4, 6, 8}, 0)
}

func TestSparseToGonumDense(t *testing.T) {
	m := makeSparse(t, 2, 3, FormatCSC, []float32{
		1, 0, 2,
		0, 3, 0,
	})
	g, err := m.ToGonumDense()
	if err != nil {
		t.Fatalf("ToGonumDense: %v", err)
	}
	want := mat.NewDense(2, 3, []float64{1, 0, 2, 0, 3, 0})
	if !mat.Equal(g, want) {
		t.Errorf("ToGonumDense = %v, want %v", mat.Formatted(g), mat.Formatted(want))
	}
}
