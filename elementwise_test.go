package cusp

import (
	"math"
	"testing"
)

func TestInplaceSigmoid(t *testing.T) {
	m := makeSparse(t, 2, 2, FormatCSC, []float32{
		0.5, 0,
		0, -0.5,
	})
	m.InplaceSigmoid()
	sig := func(x float64) float32 { return float32(1 / (1 + math.Exp(-x))) }
	want := []float32{sig(0.5), 0, 0, sig(-0.5)}
	expectValues(t, "sigmoid", hostValues(t, m), want, 1e-6)
}

// Absent entries stay at zero: exp of a sparse matrix must not turn the
// implicit zeros into ones.
func TestInplaceExpSkipsAbsent(t *testing.T) {
	m := makeSparse(t, 2, 2, FormatCSR, []float32{
		1, 0,
		0, 2,
	})
	m.InplaceExp()
	got := hostValues(t, m)
	if got[1] != 0 || got[2] != 0 {
		t.Errorf("exp populated absent entries: %v", got)
	}
	expectNear(t, "exp(1)", got[0], float32(math.E), 1e-5)
}

func TestAssignTanhOf(t *testing.T) {
	a := makeSparse(t, 2, 2, FormatCSC, []float32{
		1, 0,
		0, -1,
	})
	m := EmptySparseMatrix(0, FormatCSC)
	defer m.Release()
	if err := m.AssignTanhOf(a); err != nil {
		t.Fatalf("AssignTanhOf: %v", err)
	}
	th := float32(math.Tanh(1))
	expectValues(t, "tanh", hostValues(t, m), []float32{th, 0, 0, -th}, 1e-6)
	// Source untouched.
	expectValues(t, "source", hostValues(t, a), []float32{1, 0, 0, -1}, 0)
}

func TestElementInverse(t *testing.T) {
	m := makeSparse(t, 2, 2, FormatCSC, []float32{
		2, 0,
		0, 4,
	})
	m.ElementInverse()
	expectValues(t, "1/x", hostValues(t, m), []float32{0.5, 0, 0, 0.25}, 1e-6)
}

func TestInplaceAbsAndSqrt(t *testing.T) {
	m := makeSparse(t, 2, 2, FormatCSR, []float32{
		-4, 0,
		0, 9,
	})
	m.InplaceAbs()
	m.InplaceSqrt()
	expectValues(t, "sqrt(abs(x))", hostValues(t, m), []float32{2, 0, 0, 3}, 1e-6)
}

func TestLinearRectifierDerivative(t *testing.T) {
	m := makeSparse(t, 1, 3, FormatCSC, []float32{2, -3, 5})
	m.InplaceLinearRectifierDerivative()
	expectValues(t, "relu'", hostValues(t, m), []float32{1, 0, 1}, 0)
}

func TestInplaceTruncate(t *testing.T) {
	m := makeSparse(t, 1, 4, FormatCSC, []float32{5, -5, 0.5, -0.5})
	m.InplaceTruncate(2)
	expectValues(t, "clip", hostValues(t, m), []float32{2, -2, 0.5, -0.5}, 0)
}

func TestInplaceSoftThreshold(t *testing.T) {
	m := makeSparse(t, 1, 4, FormatCSC, []float32{5, -5, 0.5, -0.5})
	m.InplaceSoftThreshold(1)
	expectValues(t, "soft threshold", hostValues(t, m), []float32{4, -4, 0, 0}, 1e-6)
}

func TestTruncateBottomTop(t *testing.T) {
	m := makeSparse(t, 1, 3, FormatCSC, []float32{-2, 1, 4})
	m.InplaceTruncateBottom(0.5)
	expectValues(t, "bottom", hostValues(t, m), []float32{0.5, 1, 4}, 0)

	a := makeSparse(t, 1, 3, FormatCSC, []float32{-2, 1, 4})
	out := EmptySparseMatrix(0, FormatCSC)
	defer out.Release()
	if err := out.AssignTruncateTopOf(a, 2); err != nil {
		t.Fatalf("AssignTruncateTopOf: %v", err)
	}
	expectValues(t, "top", hostValues(t, out), []float32{-2, 1, 2}, 0)
}

func TestSetToZeroIfAbsLessThan(t *testing.T) {
	m := makeSparse(t, 1, 4, FormatCSC, []float32{0.1, -0.2, 3, -4})
	m.SetToZeroIfAbsLessThan(1)
	expectValues(t, "flush", hostValues(t, m), []float32{0, 0, 3, -4}, 0)
}

// Block storage transforms every stored slot, explicit zeros included.
func TestElementwiseOnBlockFormat(t *testing.T) {
	m := makeSparse(t, 2, 3, FormatSparseBlockCol, []float32{
		4, 0, 9,
		0, 0, 16,
	})
	m.InplaceSqrt()
	want := []float32{
		2, 0, 3,
		0, 0, 4,
	}
	expectValues(t, "block sqrt", hostValues(t, m), want, 1e-6)
}
