package cusp

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// Reductions over the stored non-zero values. Absent entries are
// implicitly zero and contribute nothing, which also means they cannot
// change a maximum computed over magnitudes.

// SumOfElements returns the sum of all stored values.
func (m *SparseMatrix) SumOfElements() float32 {
	var sum float32
	for _, v := range m.inUseValues() {
		sum += v
	}
	return sum
}

// SumOfAbsElements returns the sum of the absolute stored values.
func (m *SparseMatrix) SumOfAbsElements() float32 {
	vals := m.inUseValues()
	return blas32.Asum(blas32.Vector{N: len(vals), Inc: 1, Data: vals})
}

// FrobeniusNorm returns the square root of the sum of squared stored
// values.
func (m *SparseMatrix) FrobeniusNorm() float32 {
	vals := m.inUseValues()
	return blas32.Nrm2(blas32.Vector{N: len(vals), Inc: 1, Data: vals})
}

// MatrixNormInf returns the largest absolute stored value.
func (m *SparseMatrix) MatrixNormInf() float32 {
	var norm float32
	for _, v := range m.inUseValues() {
		if a := float32(math.Abs(float64(v))); a > norm {
			norm = a
		}
	}
	return norm
}

// MatrixNorm1 returns the sum of absolute stored values.
func (m *SparseMatrix) MatrixNorm1() float32 {
	return m.SumOfAbsElements()
}

// MatrixNorm0 returns the number of non-zero entries in use.
func (m *SparseMatrix) MatrixNorm0() float32 {
	return float32(m.NzCount())
}
