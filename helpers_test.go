package cusp

import (
	"math"
	"testing"
)

// Shared test fixtures. Matrices are built from row-major host data by
// staging through a dense matrix, which exercises the import path every
// other test depends on.

func makeDense(t *testing.T, rows, cols int, data []float32) *Dense {
	t.Helper()
	d, err := NewDenseFromData(rows, cols, data)
	if err != nil {
		t.Fatalf("NewDenseFromData(%dx%d): %v", rows, cols, err)
	}
	t.Cleanup(func() { d.Release() })
	return d
}

func makeSparse(t *testing.T, rows, cols int, format MatrixFormat, data []float32) *SparseMatrix {
	t.Helper()
	d := makeDense(t, rows, cols, data)
	m := EmptySparseMatrix(CurrentDevice(), format)
	if err := m.SetFromDense(d, format); err != nil {
		t.Fatalf("SetFromDense(%s): %v", format, err)
	}
	t.Cleanup(func() { m.Release() })
	return m
}

// hostValues reads a matrix back as row-major host data.
func hostValues(t *testing.T, m *SparseMatrix) []float32 {
	t.Helper()
	d, err := m.CopyToDense()
	if err != nil {
		t.Fatalf("CopyToDense: %v", err)
	}
	defer d.Release()
	out := make([]float32, m.NumRows()*m.NumCols())
	copy(out, d.Float32())
	return out
}

func expectValues(t *testing.T, name string, got, want []float32, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > tol {
			t.Errorf("%s: element %d is %g, want %g", name, i, got[i], want[i])
		}
	}
}

func expectNear(t *testing.T, name string, got, want float32, tol float64) {
	t.Helper()
	if math.Abs(float64(got-want)) > tol {
		t.Errorf("%s = %g, want %g", name, got, want)
	}
}

// zeros returns a zeroed host slice of the given length.
func zeros(n int) []float32 { return make([]float32, n) }
