package cusp

import "fmt"

// Slice views. A column slice shares the parent's value and major-index
// storage and shifts only the secondary-index interpretation; no values
// are copied. Views are read-oriented: writing through a view in a way
// that changes the parent's non-zero set is undefined. A view must not
// outlive its parent.

// ColumnSlice returns a read view over numCols columns of m starting at
// startColumn. Supported only for CSC-format matrices.
func (m *SparseMatrix) ColumnSlice(startColumn, numCols int) (*SparseMatrix, error) {
	if m.desc.format != FormatCSC {
		return nil, NewNotImplementedError("ColumnSlice", m.desc.format)
	}
	if startColumn < 0 || numCols < 0 || startColumn+numCols > m.desc.numCols {
		return nil, NewInvalidArgError("ColumnSlice",
			fmt.Sprintf("slice [%d,%d) out of range for %d columns", startColumn, startColumn+numCols, m.desc.numCols))
	}
	view := &SparseMatrix{desc: m.desc}
	view.desc.numCols = numCols
	view.desc.sliceViewOffset = m.desc.sliceViewOffset + startColumn
	view.desc.external = true
	view.InvalidateCachedNzCount()
	return view, nil
}

// AssignColumnSliceToDense materializes numCols columns of m starting at
// startColumn into dst without converting formats. dst must be
// numRows x numCols.
func (m *SparseMatrix) AssignColumnSliceToDense(dst *Dense, startColumn, numCols int) error {
	view, err := m.ColumnSlice(startColumn, numCols)
	if err != nil {
		return err
	}
	return view.AssignToDense(dst)
}

// CopyColumnSliceToDense allocates and returns a dense copy of numCols
// columns of m starting at startColumn.
func (m *SparseMatrix) CopyColumnSliceToDense(startColumn, numCols int) (*Dense, error) {
	dst, err := NewDense(m.desc.numRows, numCols)
	if err != nil {
		return nil, err
	}
	if err := m.AssignColumnSliceToDense(dst, startColumn, numCols); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}
