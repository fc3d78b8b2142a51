package cusp

import "math"

// Equality checks with a tolerance threshold. A sparse operand's absent
// entries compare as exact zero.

// AreEqual reports whether two sparse matrices agree elementwise within
// threshold. Pass DefaultEqualityThreshold when no tighter bound is
// needed.
func AreEqual(a, b *SparseMatrix, threshold float32) bool {
	if a.NumRows() != b.NumRows() || a.NumCols() != b.NumCols() {
		return false
	}
	diff := stageDense(a)
	if diff == nil {
		return false
	}
	ok := true
	err := b.forEachNz(func(row, col, _ int, v float32) {
		diff[col*b.NumRows()+row] -= v
	})
	if err != nil {
		return false
	}
	for _, d := range diff {
		if float32(math.Abs(float64(d))) > threshold {
			ok = false
			break
		}
	}
	return ok
}

// AreEqualSparseDense reports whether a sparse and a dense matrix agree
// elementwise within threshold, treating entries absent from the sparse
// matrix as exact zero.
func AreEqualSparseDense(a *SparseMatrix, b *Dense, threshold float32) bool {
	if a.NumRows() != b.Rows() || a.NumCols() != b.Cols() {
		return false
	}
	staged := stageDense(a)
	if staged == nil {
		return false
	}
	for i := 0; i < b.Rows(); i++ {
		for j := 0; j < b.Cols(); j++ {
			d := staged[j*a.NumRows()+i] - b.At(i, j)
			if float32(math.Abs(float64(d))) > threshold {
				return false
			}
		}
	}
	return true
}

// IsEqualTo reports whether m agrees with another sparse matrix within
// threshold.
func (m *SparseMatrix) IsEqualTo(a *SparseMatrix, threshold float32) bool {
	return AreEqual(m, a, threshold)
}

// IsEqualToDense reports whether m agrees with a dense matrix within
// threshold.
func (m *SparseMatrix) IsEqualToDense(a *Dense, threshold float32) bool {
	return AreEqualSparseDense(m, a, threshold)
}

// stageDense scatters the sparse entries into a column-major host
// scratch array. This is host staging for comparison, not a dense
// matrix materialization.
func stageDense(a *SparseMatrix) []float32 {
	staged := make([]float32, a.NumRows()*a.NumCols())
	if err := a.forEachNz(func(row, col, _ int, v float32) {
		staged[col*a.NumRows()+row] = v
	}); err != nil {
		return nil
	}
	return staged
}
