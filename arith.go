package cusp

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/blas/blas32"
)

// Arithmetic engine. Sparse-dense products visit only the stored
// non-zero entries; no code path here materializes a dense copy of a
// sparse operand, and no implicit format conversion is performed for the
// sparse-dense kernels: the caller supplies the sparse operand already
// in CSR or CSC.

func checkSameDevice(op string, dev int, others ...int) error {
	for _, d := range others {
		if d != dev {
			return ErrDeviceMismatch
		}
	}
	return nil
}

// MultiplyAndWeightedAdd performs C = alpha * op(S) * op(D) + beta * C
// where S is sparse and D and C are dense. op is the identity or the
// transpose, independently per operand. S must be in CSR or CSC format.
func MultiplyAndWeightedAdd(alpha float32, s *SparseMatrix, transS bool, d *Dense, transD bool, beta float32, c *Dense) error {
	if !s.Format().IsCompressed() {
		return NewNotImplementedError("MultiplyAndWeightedAdd", s.Format())
	}
	if err := checkSameDevice("MultiplyAndWeightedAdd", s.DeviceID(), d.DeviceID(), c.DeviceID()); err != nil {
		return err
	}
	sRows, sCols := opShape(s.NumRows(), s.NumCols(), transS)
	dRows, dCols := opShape(d.Rows(), d.Cols(), transD)
	if sCols != dRows || c.Rows() != sRows || c.Cols() != dCols {
		return ErrShapeMismatch
	}

	scaleDense(beta, c)

	n := c.Cols()
	cData := c.Float32()
	dData := d.Float32()
	return s.forEachNz(func(row, col, _ int, v float32) {
		if transS {
			row, col = col, row
		}
		// C[row, :] += alpha*v * op(D)[col, :]
		y := blas32.Vector{N: n, Inc: 1, Data: cData[row*c.Cols():]}
		var x blas32.Vector
		if transD {
			x = blas32.Vector{N: n, Inc: d.Cols(), Data: dData[col:]}
		} else {
			x = blas32.Vector{N: n, Inc: 1, Data: dData[col*d.Cols():]}
		}
		blas32.Axpy(alpha*v, x, y)
	})
}

// MultiplyDenseTimesSparseAndWeightedAdd performs
// C = alpha * op(D) * op(S) + beta * C for a dense left operand.
func MultiplyDenseTimesSparseAndWeightedAdd(alpha float32, d *Dense, transD bool, s *SparseMatrix, transS bool, beta float32, c *Dense) error {
	if !s.Format().IsCompressed() {
		return NewNotImplementedError("MultiplyDenseTimesSparseAndWeightedAdd", s.Format())
	}
	if err := checkSameDevice("MultiplyDenseTimesSparseAndWeightedAdd", s.DeviceID(), d.DeviceID(), c.DeviceID()); err != nil {
		return err
	}
	dRows, dCols := opShape(d.Rows(), d.Cols(), transD)
	sRows, sCols := opShape(s.NumRows(), s.NumCols(), transS)
	if dCols != sRows || c.Rows() != dRows || c.Cols() != sCols {
		return ErrShapeMismatch
	}

	scaleDense(beta, c)

	m := c.Rows()
	cData := c.Float32()
	dData := d.Float32()
	return s.forEachNz(func(row, col, _ int, v float32) {
		if transS {
			row, col = col, row
		}
		// C[:, col] += alpha*v * op(D)[:, row]
		y := blas32.Vector{N: m, Inc: c.Cols(), Data: cData[col:]}
		var x blas32.Vector
		if transD {
			x = blas32.Vector{N: m, Inc: 1, Data: dData[row*d.Cols():]}
		} else {
			x = blas32.Vector{N: m, Inc: d.Cols(), Data: dData[row:]}
		}
		blas32.Axpy(alpha*v, x, y)
	})
}

func scaleDense(beta float32, c *Dense) {
	switch beta {
	case 1:
	case 0:
		c.Zero()
	default:
		c.Scale(beta)
	}
}

// Multiply performs C = S * D.
func Multiply(s *SparseMatrix, d *Dense, c *Dense) error {
	return MultiplyAndWeightedAdd(1, s, false, d, false, 0, c)
}

// MultiplyDenseSparse performs C = D * S.
func MultiplyDenseSparse(d *Dense, s *SparseMatrix, c *Dense) error {
	return MultiplyDenseTimesSparseAndWeightedAdd(1, d, false, s, false, 0, c)
}

// AssignProductOf sets m = op(a) * op(b) for sparse operands, producing a
// CSC result. The multiply runs in two passes: a symbolic pass sizes each
// output column, then the numeric pass fills it. Transposed or
// CSR-format operands are staged through an intermediate CSC conversion.
func (m *SparseMatrix) AssignProductOf(a *SparseMatrix, transA bool, b *SparseMatrix, transB bool) error {
	if m == a || m == b {
		// The output buffer is resized between the symbolic and numeric
		// passes, which would wipe an aliased operand mid-multiply.
		return NewInvalidArgError("AssignProductOf", "output must not alias an operand")
	}
	if err := checkSameDevice("AssignProductOf", m.DeviceID(), a.DeviceID(), b.DeviceID()); err != nil {
		return err
	}
	left, leftTemp, err := asCSC(a, transA)
	if err != nil {
		return err
	}
	if leftTemp {
		defer left.Release()
	}
	right, rightTemp, err := asCSC(b, transB)
	if err != nil {
		return err
	}
	if rightTemp {
		defer right.Release()
	}
	if left.NumCols() != right.NumRows() {
		return ErrShapeMismatch
	}
	rows, cols := left.NumRows(), right.NumCols()

	// Accessor views rather than raw offsets: these honor a slice view's
	// shifted secondary index, whose entries are absolute positions into
	// the value and major arrays.
	lVals, lMajor, lSec := left.valuesRaw(), left.MajorIndexLocation(), left.SecondaryIndexLocation()
	rVals, rMajor, rSec := right.valuesRaw(), right.MajorIndexLocation(), right.SecondaryIndexLocation()

	// Symbolic pass: count the distinct row pattern of each output column.
	marker := make([]int32, rows)
	for i := range marker {
		marker[i] = -1
	}
	colCount := make([]int32, cols+1)
	total := 0
	for j := 0; j < cols; j++ {
		stamp := int32(j)
		for t := rSec[j]; t < rSec[j+1]; t++ {
			k := rMajor[t]
			for p := lSec[k]; p < lSec[k+1]; p++ {
				if marker[lMajor[p]] != stamp {
					marker[lMajor[p]] = stamp
					colCount[j+1]++
					total++
				}
			}
		}
	}

	if err := m.RequireSizeAndAllocate(rows, cols, total, FormatCSC, true, false); err != nil {
		return err
	}
	vals, major, sec := subViews(m.desc.buffer, rows, cols, m.desc.sizeAllocated, FormatCSC)
	sec[0] = 0
	for j := 0; j < cols; j++ {
		sec[j+1] = sec[j] + colCount[j+1]
	}

	// Numeric pass with a dense accumulator per column.
	acc := make([]float32, rows)
	present := make([]int32, 0, rows)
	for i := range marker {
		marker[i] = -1
	}
	for j := 0; j < cols; j++ {
		present = present[:0]
		for t := rSec[j]; t < rSec[j+1]; t++ {
			k := rMajor[t]
			bv := rVals[t]
			for p := lSec[k]; p < lSec[k+1]; p++ {
				i := lMajor[p]
				if marker[i] != int32(j) {
					marker[i] = int32(j)
					present = append(present, i)
					acc[i] = 0
				}
				acc[i] += lVals[p] * bv
			}
		}
		sort.Slice(present, func(x, y int) bool { return present[x] < present[y] })
		base := sec[j]
		for t, i := range present {
			major[int(base)+t] = i
			vals[int(base)+t] = acc[i]
		}
	}
	m.desc.blockSize = 0
	m.updateNzCount(total)
	return nil
}

// MultiplySparse performs C = op(A) * op(B) for sparse operands.
func MultiplySparse(a *SparseMatrix, transA bool, b *SparseMatrix, transB bool, c *SparseMatrix) error {
	return c.AssignProductOf(a, transA, b, transB)
}

// asCSC returns s viewed as a CSC matrix, staging through an owned
// temporary when a transpose or a format conversion is needed. The
// second result reports whether the caller must release the returned
// matrix.
func asCSC(s *SparseMatrix, transpose bool) (*SparseMatrix, bool, error) {
	if !transpose && s.Format() == FormatCSC {
		return s, false, nil
	}
	tmp := EmptySparseMatrix(s.DeviceID(), FormatCSC)
	if transpose {
		if err := tmp.AssignTransposeOf(s); err != nil {
			return nil, false, err
		}
		if err := tmp.ConvertToSparseFormat(FormatCSC); err != nil {
			tmp.Release()
			return nil, false, err
		}
	} else if err := s.ConvertToSparseFormatOut(FormatCSC, tmp); err != nil {
		return nil, false, err
	}
	return tmp, true, nil
}

// ScaleAndAdd performs C = alpha*A + beta*B where A is sparse and B and
// C are dense. B and C may alias.
func ScaleAndAdd(alpha float32, a *SparseMatrix, beta float32, b *Dense, c *Dense) error {
	if err := checkSameDevice("ScaleAndAdd", a.DeviceID(), b.DeviceID(), c.DeviceID()); err != nil {
		return err
	}
	if a.NumRows() != b.Rows() || a.NumCols() != b.Cols() ||
		a.NumRows() != c.Rows() || a.NumCols() != c.Cols() {
		return ErrShapeMismatch
	}
	if c != b {
		copy(c.Float32(), b.Float32())
	}
	scaleDense(beta, c)
	return a.forEachNz(func(row, col, _ int, v float32) {
		c.Set(row, col, c.At(row, col)+alpha*v)
	})
}

// Scale multiplies every stored non-zero value of a by alpha in place.
func Scale(alpha float32, a *SparseMatrix) {
	a.ScalarMultiply(alpha)
}

// ScalarMultiply multiplies every stored non-zero value by alpha,
// mutating the matrix in place.
func (m *SparseMatrix) ScalarMultiply(alpha float32) {
	vals := m.inUseValues()
	blas32.Scal(alpha, blas32.Vector{N: len(vals), Inc: 1, Data: vals})
}

// inUseValues returns the slice of value slots currently in use,
// including a slice view's window.
func (m *SparseMatrix) inUseValues() []float32 {
	if m.desc.format.IsBlock() {
		return m.valuesRaw()[:m.blockValuesInUse()]
	}
	return m.NzValues()
}

// ElementPower raises every stored non-zero value to the given power in
// place.
func (m *SparseMatrix) ElementPower(power float32) {
	vals := m.inUseValues()
	for i, v := range vals {
		vals[i] = float32(math.Pow(float64(v), float64(power)))
	}
}

// AssignElementPowerOf sets m to a with every stored value raised to
// power. Structure is copied from a.
func (m *SparseMatrix) AssignElementPowerOf(a *SparseMatrix, power float32) error {
	if err := m.SetValue(a); err != nil {
		return err
	}
	m.ElementPower(power)
	return nil
}

// ElementWisePower performs c = a .^ power out of place.
func ElementWisePower(power float32, a *SparseMatrix, c *SparseMatrix) error {
	return c.AssignElementPowerOf(a, power)
}

// Add returns the elementwise sum m + a as a new matrix in m's format.
func (m *SparseMatrix) Add(a *SparseMatrix) (*SparseMatrix, error) {
	return m.addScaled(1, a)
}

// Sub returns the elementwise difference m - a as a new matrix in m's
// format.
func (m *SparseMatrix) Sub(a *SparseMatrix) (*SparseMatrix, error) {
	return m.addScaled(-1, a)
}

func (m *SparseMatrix) addScaled(sign float32, a *SparseMatrix) (*SparseMatrix, error) {
	if err := checkSameDevice("Add", m.DeviceID(), a.DeviceID()); err != nil {
		return nil, err
	}
	if m.NumRows() != a.NumRows() || m.NumCols() != a.NumCols() {
		return nil, ErrShapeMismatch
	}
	// Merge through a coordinate map; exact cancellations drop out.
	sum := make(map[int64]float32)
	key := func(r, c int) int64 { return int64(c)*int64(m.NumRows()) + int64(r) }
	if err := m.forEachNz(func(r, c, _ int, v float32) { sum[key(r, c)] += v }); err != nil {
		return nil, err
	}
	if err := a.forEachNz(func(r, c, _ int, v float32) { sum[key(r, c)] += sign * v }); err != nil {
		return nil, err
	}
	entries := make([]nzEntry, 0, len(sum))
	for k, v := range sum {
		if v == 0 {
			continue
		}
		entries = append(entries, nzEntry{
			row: int32(k % int64(m.NumRows())),
			col: int32(k / int64(m.NumRows())),
			val: v,
		})
	}
	sortEntriesForFormat(entries, m.Format())
	out := EmptySparseMatrix(m.DeviceID(), m.Format())
	if err := buildFormat(out, m.NumRows(), m.NumCols(), m.Format(), entries); err != nil {
		return nil, err
	}
	return out, nil
}

// InnerProductOfMatrices computes the sum over all positions of
// a[i,j]*b[i,j]. Positions absent from a contribute zero.
func InnerProductOfMatrices(a *SparseMatrix, b *Dense) (float32, error) {
	if a.NumRows() != b.Rows() || a.NumCols() != b.Cols() {
		return 0, ErrShapeMismatch
	}
	var sum float32
	err := a.forEachNz(func(row, col, _ int, v float32) {
		sum += v * b.At(row, col)
	})
	return sum, err
}

// InnerProduct computes per-column (isColWise) or per-row inner products
// of a and b into the vector c, which must be 1 x cols or rows x 1.
func InnerProduct(a *SparseMatrix, b *Dense, c *Dense, isColWise bool) error {
	if a.NumRows() != b.Rows() || a.NumCols() != b.Cols() {
		return ErrShapeMismatch
	}
	if isColWise {
		if c.Rows() != 1 || c.Cols() != a.NumCols() {
			return ErrShapeMismatch
		}
	} else {
		if c.Rows() != a.NumRows() || c.Cols() != 1 {
			return ErrShapeMismatch
		}
	}
	c.Zero()
	return a.forEachNz(func(row, col, _ int, v float32) {
		if isColWise {
			c.Set(0, col, c.At(0, col)+v*b.At(row, col))
		} else {
			c.Set(row, 0, c.At(row, 0)+v*b.At(row, col))
		}
	})
}

// ColumnwiseScaleAndWeightedAdd performs C = alpha * A * diag(v) + beta*C
// where A is sparse, v is a 1 x cols (or cols x 1) dense vector and C is
// dense.
func ColumnwiseScaleAndWeightedAdd(alpha float32, a *SparseMatrix, v *Dense, beta float32, c *Dense) error {
	if a.NumRows() != c.Rows() || a.NumCols() != c.Cols() {
		return ErrShapeMismatch
	}
	if v.Rows()*v.Cols() != a.NumCols() {
		return NewInvalidArgError("ColumnwiseScaleAndWeightedAdd",
			fmt.Sprintf("scale vector has %d elements, want %d", v.Rows()*v.Cols(), a.NumCols()))
	}
	scaleDense(beta, c)
	vData := v.Float32()
	return a.forEachNz(func(row, col, _ int, val float32) {
		c.Set(row, col, c.At(row, col)+alpha*val*vData[col])
	})
}
