package cusp

// Host interop. Import and export of complete compressed layouts between
// host slices and the packed device buffer. Imports size the matrix and
// replace its entire contents; exports return freshly allocated host
// slices that the caller owns.

// Transferer performs host/device copies for the bulk import and export
// paths. Callers with a staging pipeline can supply their own; a nil
// Transferer falls back to direct Memcpy.
type Transferer interface {
	Transfer(dst, src interface{}, size int, kind MemcpyKind) error
}

type memcpyTransferer struct{}

func (memcpyTransferer) Transfer(dst, src interface{}, size int, kind MemcpyKind) error {
	return Memcpy(dst, src, size, kind)
}

func orDefault(t Transferer) Transferer {
	if t == nil {
		return memcpyTransferer{}
	}
	return t
}

func checkCompressedHostArrays(op string, compPtr, majorIdx []int32, vals []float32, extent int) error {
	nz := len(vals)
	if len(majorIdx) != nz {
		return NewInvalidArgError(op, "value and major index lengths differ")
	}
	if len(compPtr) != extent+1 {
		return NewInvalidArgError(op, "compressed index length must be extent+1")
	}
	if int(compPtr[extent])-int(compPtr[0]) != nz {
		return NewInvalidArgError(op, "compressed index does not cover the values")
	}
	return nil
}

func (m *SparseMatrix) setCompressedFromHost(op string, format MatrixFormat, compPtr, majorIdx []int32, vals []float32, numRows, numCols int, t Transferer) error {
	extent := numCols
	if format == FormatCSR {
		extent = numRows
	}
	if err := checkCompressedHostArrays(op, compPtr, majorIdx, vals, extent); err != nil {
		return err
	}
	nz := len(vals)
	if err := m.RequireSizeAndAllocate(numRows, numCols, nz, format, true, false); err != nil {
		return err
	}
	t = orDefault(t)
	dv, dm, ds := subViews(m.desc.buffer, numRows, numCols, m.desc.sizeAllocated, format)
	if nz > 0 {
		if err := t.Transfer(dv, vals, nz*ElemSize, MemcpyHostToDevice); err != nil {
			return err
		}
		if err := t.Transfer(dm, majorIdx, nz*IndexSize, MemcpyHostToDevice); err != nil {
			return err
		}
	}
	// Source pointers need not start at zero; the device layout does.
	base := compPtr[0]
	for i := 0; i <= extent; i++ {
		ds[i] = compPtr[i] - base
	}
	m.desc.blockSize = 0
	m.updateNzCount(nz)
	return nil
}

// SetMatrixFromCSCFormat replaces the matrix contents with a CSC layout
// given as host arrays: colPtr of length numCols+1, and rowIdx/vals of
// length nnz. A nil Transferer copies directly.
func (m *SparseMatrix) SetMatrixFromCSCFormat(colPtr, rowIdx []int32, vals []float32, numRows, numCols int, t Transferer) error {
	return m.setCompressedFromHost("SetMatrixFromCSCFormat", FormatCSC, colPtr, rowIdx, vals, numRows, numCols, t)
}

// SetMatrixFromCSRFormat replaces the matrix contents with a CSR layout
// given as host arrays: rowPtr of length numRows+1, and colIdx/vals of
// length nnz. A nil Transferer copies directly.
func (m *SparseMatrix) SetMatrixFromCSRFormat(rowPtr, colIdx []int32, vals []float32, numRows, numCols int, t Transferer) error {
	return m.setCompressedFromHost("SetMatrixFromCSRFormat", FormatCSR, rowPtr, colIdx, vals, numRows, numCols, t)
}

// SetMatrixFromSBCFormat replaces the matrix contents with a sparse
// block column layout given as host arrays: blockIDs names the populated
// columns, and vals holds len(blockIDs) dense column blocks of numRows
// values each, in block order.
func (m *SparseMatrix) SetMatrixFromSBCFormat(blockIDs []int32, vals []float32, numRows, numCols int) error {
	const op = "SetMatrixFromSBCFormat"
	blocks := len(blockIDs)
	if len(vals) != blocks*numRows {
		return NewInvalidArgError(op, "value length must be numBlocks*numRows")
	}
	for _, id := range blockIDs {
		if id < 0 || int(id) >= numCols {
			return NewInvalidArgError(op, "block column id out of range")
		}
	}
	if err := m.RequireSizeAndAllocate(numRows, numCols, blocks*numRows, FormatSparseBlockCol, true, false); err != nil {
		return err
	}
	dv, dm, ds := subViews(m.desc.buffer, numRows, numCols, m.desc.sizeAllocated, FormatSparseBlockCol)
	for j := 0; j < numCols; j++ {
		dm[j] = IndexNotAssigned
	}
	for slot, id := range blockIDs {
		dm[id] = int32(slot)
		ds[slot] = id
	}
	copy(dv, vals)
	m.desc.blockSize = blocks
	m.updateNzCount(blocks * numRows)
	return nil
}

// GetMatrixFromCSCFormat exports the matrix as host CSC arrays. The
// returned slices are fresh copies; colPtr always starts at zero, also
// for column slice views.
func (m *SparseMatrix) GetMatrixFromCSCFormat() (colPtr, rowIdx []int32, vals []float32, err error) {
	assertFormat("GetMatrixFromCSCFormat", m.desc.format, FormatCSC)
	return m.getCompressedToHost(m.desc.numCols)
}

// GetMatrixFromCSRFormat exports the matrix as host CSR arrays. The
// returned slices are fresh copies; rowPtr always starts at zero.
func (m *SparseMatrix) GetMatrixFromCSRFormat() (rowPtr, colIdx []int32, vals []float32, err error) {
	assertFormat("GetMatrixFromCSRFormat", m.desc.format, FormatCSR)
	return m.getCompressedToHost(m.desc.numRows)
}

func (m *SparseMatrix) getCompressedToHost(extent int) (compPtr, majorIdx []int32, vals []float32, err error) {
	m.device().Synchronize()
	nz := m.NzCount()
	compPtr = make([]int32, extent+1)
	majorIdx = make([]int32, nz)
	vals = make([]float32, nz)
	sec := m.SecondaryIndexLocation()
	base := sec[0]
	for i := 0; i <= extent; i++ {
		compPtr[i] = sec[i] - base
	}
	start := m.dataStart()
	if nz > 0 {
		if err = Memcpy(majorIdx, m.majorRaw()[start:], nz*IndexSize, MemcpyDeviceToHost); err != nil {
			return nil, nil, nil, err
		}
		if err = Memcpy(vals, m.valuesRaw()[start:], nz*ElemSize, MemcpyDeviceToHost); err != nil {
			return nil, nil, nil, err
		}
	}
	return compPtr, majorIdx, vals, nil
}
