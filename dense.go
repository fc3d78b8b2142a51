package cusp

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/mat"
)

// Dense is the dense collaborator of the sparse engine: a device-resident
// row-major float32 matrix exposing its extents, a raw data pointer, and
// elementwise kernels. Its dense algebra is backed by gonum's blas32.
type Dense struct {
	rows, cols int
	deviceID   int
	data       DevicePtr
}

// NewDense allocates a zeroed rows x cols dense matrix on the current
// device.
func NewDense(rows, cols int) (*Dense, error) {
	buf, err := Malloc(ElemSize * rows * cols)
	if err != nil {
		return nil, err
	}
	return &Dense{rows: rows, cols: cols, deviceID: CurrentDevice(), data: buf}, nil
}

// NewDenseFromData allocates a dense matrix and copies row-major host
// data into it.
func NewDenseFromData(rows, cols int, data []float32) (*Dense, error) {
	if len(data) != rows*cols {
		return nil, ErrShapeMismatch
	}
	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	copy(d.Float32(), data)
	return d, nil
}

// Rows returns the row extent.
func (d *Dense) Rows() int { return d.rows }

// Cols returns the column extent.
func (d *Dense) Cols() int { return d.cols }

// DeviceID returns the device this matrix resides on.
func (d *Dense) DeviceID() int { return d.deviceID }

// Data returns the raw device buffer.
func (d *Dense) Data() DevicePtr { return d.data }

// Float32 returns the row-major element view.
func (d *Dense) Float32() []float32 {
	return d.data.Float32()[:d.rows*d.cols]
}

// At returns the element at (i, j).
func (d *Dense) At(i, j int) float32 {
	return d.Float32()[i*d.cols+j]
}

// Set assigns the element at (i, j).
func (d *Dense) Set(i, j int, v float32) {
	d.Float32()[i*d.cols+j] = v
}

// Row returns the contiguous i-th row.
func (d *Dense) Row(i int) []float32 {
	return d.Float32()[i*d.cols : (i+1)*d.cols]
}

// Zero clears all elements.
func (d *Dense) Zero() {
	clear(d.Float32())
}

// Scale multiplies every element by alpha in place.
func (d *Dense) Scale(alpha float32) {
	n := d.rows * d.cols
	if alpha == 0 {
		d.Zero()
		return
	}
	blas32.Scal(alpha, blas32.Vector{N: n, Inc: 1, Data: d.Float32()})
}

// AddScaled performs d += alpha*a elementwise.
func (d *Dense) AddScaled(alpha float32, a *Dense) error {
	if d.rows != a.rows || d.cols != a.cols {
		return ErrShapeMismatch
	}
	n := d.rows * d.cols
	blas32.Axpy(alpha,
		blas32.Vector{N: n, Inc: 1, Data: a.Float32()},
		blas32.Vector{N: n, Inc: 1, Data: d.Float32()})
	return nil
}

// Release frees the device buffer.
func (d *Dense) Release() error {
	if d.data.IsNil() {
		return nil
	}
	err := freeOn(d.deviceID, d.data)
	d.data = DevicePtr{}
	return err
}

// general adapts the matrix to a blas32.General header over the same
// device memory.
func (d *Dense) general() blas32.General {
	return blas32.General{
		Rows:   d.rows,
		Cols:   d.cols,
		Stride: d.cols,
		Data:   d.Float32(),
	}
}

// GemmDense computes C = alpha*op(A)*op(B) + beta*C for dense operands.
func GemmDense(transA, transB bool, alpha float32, a, b *Dense, beta float32, c *Dense) error {
	tA, tB := blas.NoTrans, blas.NoTrans
	if transA {
		tA = blas.Trans
	}
	if transB {
		tB = blas.Trans
	}
	aRows, aCols := opShape(a.rows, a.cols, transA)
	bRows, bCols := opShape(b.rows, b.cols, transB)
	if aCols != bRows || c.rows != aRows || c.cols != bCols {
		return ErrShapeMismatch
	}
	blas32.Gemm(tA, tB, alpha, a.general(), b.general(), beta, c.general())
	return nil
}

func opShape(rows, cols int, trans bool) (int, int) {
	if trans {
		return cols, rows
	}
	return rows, cols
}

// ToGonum copies the matrix into a freshly allocated gonum mat.Dense for
// host-side analysis and interop.
func (d *Dense) ToGonum() *mat.Dense {
	out := mat.NewDense(d.rows, d.cols, nil)
	for i := 0; i < d.rows; i++ {
		for j := 0; j < d.cols; j++ {
			out.Set(i, j, float64(d.At(i, j)))
		}
	}
	return out
}

// ToGonumDense materializes the sparse matrix as a host-side gonum
// mat.Dense, including implicit zeros.
func (m *SparseMatrix) ToGonumDense() (*mat.Dense, error) {
	d, err := m.CopyToDense()
	if err != nil {
		return nil, err
	}
	defer d.Release()
	return d.ToGonum(), nil
}

// DenseFromGonum allocates a device-resident copy of a gonum matrix.
func DenseFromGonum(src mat.Matrix) (*Dense, error) {
	rows, cols := src.Dims()
	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, float32(src.At(i, j)))
		}
	}
	return d, nil
}
