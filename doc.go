// Package cusp provides device-resident sparse matrices with a CUDA-like
// memory model, executed on CPU.
//
// Matrices are stored in compressed formats (CSR, CSC, sparse-block-column,
// sparse-block-row) directly in device memory as a single packed buffer:
// non-zero values, then the major index array, then the secondary index
// array. Format conversion, sparse-dense and sparse-sparse products,
// element-wise transforms, optimizer update rules, and host interop all
// operate on that packed buffer without materializing a dense copy unless
// one is explicitly requested.
//
// The engine deliberately makes no format policy decisions: it exposes
// conversion and arithmetic primitives and leaves the choice of format to
// the caller.
//
// Example usage:
//
//	m, err := cusp.NewSparseMatrix(rows, cols, nnz, cusp.CurrentDevice(), cusp.FormatCSC)
//	if err != nil {
//		return err
//	}
//	defer m.Release()
//	if err := m.SetMatrixFromCSCFormat(colPtr, rowIdx, vals, rows, cols, nil); err != nil {
//		return err
//	}
//
//	c, err := cusp.NewDense(rows, batch)
//	if err != nil {
//		return err
//	}
//	defer c.Release()
//	return cusp.MultiplyAndWeightedAdd(1, m, false, x, false, 0, c)
package cusp
