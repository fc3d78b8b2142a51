package cusp

import "sort"

// Format conversion. Every conversion preserves the multiset of
// (row, col, value) triples of the non-zero entries exactly; no
// arithmetic is performed. Entries staged through host memory during a
// conversion are deep copies; the source is never modified by the
// out-of-place variants.

// nzEntry is a host-staged non-zero triple.
type nzEntry struct {
	row, col int32
	val      float32
}

// forEachNz visits the logically non-zero entries of m. For compressed
// formats the visit order is storage order; for block formats it is
// ascending column (or row) order, so that entries within any one
// compressed lane always come out sorted. k is the value-slot index of
// the entry inside the packed buffer.
//
// Stored zeros inside a populated block are skipped: a block column may
// hold explicit zeros, which are logically absent.
func (m *SparseMatrix) forEachNz(f func(row, col, k int, v float32)) error {
	vals := m.valuesRaw()
	switch m.desc.format {
	case FormatCSC:
		sec := m.SecondaryIndexLocation()
		major := m.MajorIndexLocation()
		for j := 0; j < m.desc.numCols; j++ {
			for k := sec[j]; k < sec[j+1]; k++ {
				f(int(major[k]), j, int(k), vals[k])
			}
		}
	case FormatCSR:
		sec := m.SecondaryIndexLocation()
		major := m.MajorIndexLocation()
		for i := 0; i < m.desc.numRows; i++ {
			for k := sec[i]; k < sec[i+1]; k++ {
				f(i, int(major[k]), int(k), vals[k])
			}
		}
	case FormatSparseBlockCol:
		toBlock := m.ColOrRowToBlockID()
		for j := 0; j < m.desc.numCols; j++ {
			if toBlock[j] == IndexNotAssigned {
				continue
			}
			base := int(toBlock[j]) * m.desc.numRows
			for i := 0; i < m.desc.numRows; i++ {
				if v := vals[base+i]; v != 0 {
					f(i, j, base+i, v)
				}
			}
		}
	case FormatSparseBlockRow:
		toBlock := m.ColOrRowToBlockID()
		for i := 0; i < m.desc.numRows; i++ {
			if toBlock[i] == IndexNotAssigned {
				continue
			}
			base := int(toBlock[i]) * m.desc.numCols
			for j := 0; j < m.desc.numCols; j++ {
				if v := vals[base+j]; v != 0 {
					f(i, j, base+j, v)
				}
			}
		}
	default:
		return NewNotImplementedError("forEachNz", m.desc.format)
	}
	return nil
}

// forEachStored visits every stored value slot, including explicit
// zeros inside populated blocks. Optimizer update rules use this: a
// momentum term must keep decaying at a stored position even when the
// current gradient there is zero.
func (m *SparseMatrix) forEachStored(f func(row, col, k int, v float32)) error {
	vals := m.valuesRaw()
	switch m.desc.format {
	case FormatCSC, FormatCSR:
		return m.forEachNz(f)
	case FormatSparseBlockCol:
		toBlock := m.ColOrRowToBlockID()
		for j := 0; j < m.desc.numCols; j++ {
			if toBlock[j] == IndexNotAssigned {
				continue
			}
			base := int(toBlock[j]) * m.desc.numRows
			for i := 0; i < m.desc.numRows; i++ {
				f(i, j, base+i, vals[base+i])
			}
		}
	case FormatSparseBlockRow:
		toBlock := m.ColOrRowToBlockID()
		for i := 0; i < m.desc.numRows; i++ {
			if toBlock[i] == IndexNotAssigned {
				continue
			}
			base := int(toBlock[i]) * m.desc.numCols
			for j := 0; j < m.desc.numCols; j++ {
				f(i, j, base+j, vals[base+j])
			}
		}
	default:
		return NewNotImplementedError("forEachStored", m.desc.format)
	}
	return nil
}

// collectNz stages all non-zero triples host-side.
func (m *SparseMatrix) collectNz() ([]nzEntry, error) {
	entries := make([]nzEntry, 0, m.NzCount())
	err := m.forEachNz(func(row, col, _ int, v float32) {
		entries = append(entries, nzEntry{row: int32(row), col: int32(col), val: v})
	})
	return entries, err
}

// Builders. Each sizes dst and writes a complete layout from staged
// triples. Entries are assumed sorted within each compressed lane, which
// forEachNz and the dense scans guarantee.

func buildCSC(dst *SparseMatrix, numRows, numCols int, entries []nzEntry) error {
	nz := len(entries)
	if err := dst.RequireSizeAndAllocate(numRows, numCols, nz, FormatCSC, true, false); err != nil {
		return err
	}
	vals, major, sec := subViews(dst.desc.buffer, numRows, numCols, dst.desc.sizeAllocated, FormatCSC)
	for i := 0; i <= numCols; i++ {
		sec[i] = 0
	}
	for _, e := range entries {
		sec[e.col+1]++
	}
	for j := 0; j < numCols; j++ {
		sec[j+1] += sec[j]
	}
	next := make([]int32, numCols)
	copy(next, sec[:numCols])
	for _, e := range entries {
		k := next[e.col]
		next[e.col]++
		major[k] = e.row
		vals[k] = e.val
	}
	dst.desc.blockSize = 0
	dst.updateNzCount(nz)
	return nil
}

func buildCSR(dst *SparseMatrix, numRows, numCols int, entries []nzEntry) error {
	nz := len(entries)
	if err := dst.RequireSizeAndAllocate(numRows, numCols, nz, FormatCSR, true, false); err != nil {
		return err
	}
	vals, major, sec := subViews(dst.desc.buffer, numRows, numCols, dst.desc.sizeAllocated, FormatCSR)
	for i := 0; i <= numRows; i++ {
		sec[i] = 0
	}
	for _, e := range entries {
		sec[e.row+1]++
	}
	for i := 0; i < numRows; i++ {
		sec[i+1] += sec[i]
	}
	next := make([]int32, numRows)
	copy(next, sec[:numRows])
	for _, e := range entries {
		k := next[e.row]
		next[e.row]++
		major[k] = e.col
		vals[k] = e.val
	}
	dst.desc.blockSize = 0
	dst.updateNzCount(nz)
	return nil
}

func buildBlock(dst *SparseMatrix, numRows, numCols int, format MatrixFormat, entries []nzEntry) error {
	axis, blockLen := numCols, numRows
	if format == FormatSparseBlockRow {
		axis, blockLen = numRows, numCols
	}
	populated := make([]bool, axis)
	for _, e := range entries {
		if format == FormatSparseBlockCol {
			populated[e.col] = true
		} else {
			populated[e.row] = true
		}
	}
	blocks := 0
	for _, p := range populated {
		if p {
			blocks++
		}
	}
	if err := dst.RequireSizeAndAllocate(numRows, numCols, blocks*blockLen, format, true, false); err != nil {
		return err
	}
	vals, major, secondary := subViews(dst.desc.buffer, numRows, numCols, dst.desc.sizeAllocated, format)
	clear(vals[:blocks*blockLen])
	slot := int32(0)
	for i := 0; i < axis; i++ {
		if populated[i] {
			major[i] = slot
			secondary[slot] = int32(i)
			slot++
		} else {
			major[i] = IndexNotAssigned
		}
	}
	for _, e := range entries {
		if format == FormatSparseBlockCol {
			vals[int(major[e.col])*blockLen+int(e.row)] = e.val
		} else {
			vals[int(major[e.row])*blockLen+int(e.col)] = e.val
		}
	}
	dst.desc.blockSize = blocks
	dst.updateNzCount(blocks * blockLen)
	return nil
}

func buildFormat(dst *SparseMatrix, numRows, numCols int, format MatrixFormat, entries []nzEntry) error {
	switch format {
	case FormatCSC:
		return buildCSC(dst, numRows, numCols, entries)
	case FormatCSR:
		return buildCSR(dst, numRows, numCols, entries)
	case FormatSparseBlockCol, FormatSparseBlockRow:
		return buildBlock(dst, numRows, numCols, format, entries)
	default:
		return NewNotImplementedError("ConvertToSparseFormat", format)
	}
}

// ConvertToSparseFormatOut writes this matrix converted to newFormat into
// out, leaving the source unmodified. out must reside on the same device.
func (m *SparseMatrix) ConvertToSparseFormatOut(newFormat MatrixFormat, out *SparseMatrix) error {
	if out.desc.deviceID != m.desc.deviceID {
		return ErrDeviceMismatch
	}
	if out == m {
		return m.ConvertToSparseFormat(newFormat)
	}
	entries, err := m.collectNz()
	if err != nil {
		return err
	}
	return buildFormat(out, m.desc.numRows, m.desc.numCols, newFormat, entries)
}

// ConvertToSparseFormat converts this matrix to newFormat in place,
// relaying out the packed buffer and invalidating the cached non-zero
// count. No-op when the matrix is already in newFormat.
func (m *SparseMatrix) ConvertToSparseFormat(newFormat MatrixFormat) error {
	if newFormat == m.desc.format {
		return nil
	}
	if m.desc.external {
		return NewInvalidArgError("ConvertToSparseFormat", "cannot convert a slice view in place")
	}
	entries, err := m.collectNz()
	if err != nil {
		return err
	}
	// buildFormat resizes for the new layout, which reallocates the
	// packed buffer when the new index arrays need more room, and leaves
	// the cache freshly known.
	return buildFormat(m, m.desc.numRows, m.desc.numCols, newFormat, entries)
}

// SetFromDense imports a dense matrix, storing its non-zero elements in
// the given sparse format. Exact-zero elements are treated as absent; no
// thresholding is applied.
func (m *SparseMatrix) SetFromDense(d *Dense, format MatrixFormat) error {
	if d.DeviceID() != m.desc.deviceID {
		return ErrDeviceMismatch
	}
	var entries []nzEntry
	if format == FormatCSC || format == FormatSparseBlockCol {
		// Column-major scan keeps each compressed lane sorted.
		for j := 0; j < d.Cols(); j++ {
			for i := 0; i < d.Rows(); i++ {
				if v := d.At(i, j); v != 0 {
					entries = append(entries, nzEntry{row: int32(i), col: int32(j), val: v})
				}
			}
		}
	} else {
		for i := 0; i < d.Rows(); i++ {
			for j := 0; j < d.Cols(); j++ {
				if v := d.At(i, j); v != 0 {
					entries = append(entries, nzEntry{row: int32(i), col: int32(j), val: v})
				}
			}
		}
	}
	return buildFormat(m, d.Rows(), d.Cols(), format, entries)
}

// AssignToDense writes the fully populated dense equivalent of this
// matrix into dst, writing zero into positions absent from the sparse
// representation.
func (m *SparseMatrix) AssignToDense(dst *Dense) error {
	if dst.DeviceID() != m.desc.deviceID {
		return ErrDeviceMismatch
	}
	if dst.Rows() != m.desc.numRows || dst.Cols() != m.desc.numCols {
		return ErrShapeMismatch
	}
	dst.Zero()
	return m.forEachNz(func(row, col, _ int, v float32) {
		dst.Set(row, col, v)
	})
}

// CopyToDense allocates and returns the fully populated dense equivalent
// of this matrix.
func (m *SparseMatrix) CopyToDense() (*Dense, error) {
	dst, err := NewDense(m.desc.numRows, m.desc.numCols)
	if err != nil {
		return nil, err
	}
	if err := m.AssignToDense(dst); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

// AssignTransposeOf sets this matrix to the transpose of a, in a's
// format with swapped extents.
func (m *SparseMatrix) AssignTransposeOf(a *SparseMatrix) error {
	if a.desc.deviceID != m.desc.deviceID {
		return ErrDeviceMismatch
	}
	entries, err := a.collectNz()
	if err != nil {
		return err
	}
	for i := range entries {
		entries[i].row, entries[i].col = entries[i].col, entries[i].row
	}
	// Swapping coordinates flips the lane sort order; the builders need
	// entries grouped by the new secondary axis in sorted lanes.
	sortEntriesForFormat(entries, a.desc.format)
	return buildFormat(m, a.desc.numCols, a.desc.numRows, a.desc.format, entries)
}

// Transpose returns a new matrix holding the transpose of m.
func (m *SparseMatrix) Transpose() (*SparseMatrix, error) {
	out := EmptySparseMatrix(m.desc.deviceID, m.desc.format)
	if err := out.AssignTransposeOf(m); err != nil {
		return nil, err
	}
	return out, nil
}

// InplaceTranspose transposes m in place.
func (m *SparseMatrix) InplaceTranspose() error {
	if m.desc.external {
		return NewInvalidArgError("InplaceTranspose", "cannot transpose a slice view in place")
	}
	out := EmptySparseMatrix(m.desc.deviceID, m.desc.format)
	if err := out.AssignTransposeOf(m); err != nil {
		return err
	}
	if err := freeOn(m.desc.deviceID, m.desc.buffer); err != nil {
		return err
	}
	m.desc = out.desc
	m.nz = out.nz
	return nil
}

// sortEntriesForFormat orders staged triples the way the builder for the
// given format expects: by column then row for the column-compressed
// formats, by row then column otherwise.
func sortEntriesForFormat(entries []nzEntry, format MatrixFormat) {
	colFirst := format == FormatCSC || format == FormatSparseBlockCol
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if colFirst {
			if a.col != b.col {
				return a.col < b.col
			}
			return a.row < b.row
		}
		if a.row != b.row {
			return a.row < b.row
		}
		return a.col < b.col
	})
}

// DiagonalToDense returns the main diagonal as a 1 x min(rows, cols)
// dense matrix.
func (m *SparseMatrix) DiagonalToDense() (*Dense, error) {
	n := min(m.desc.numRows, m.desc.numCols)
	out, err := NewDense(1, n)
	if err != nil {
		return nil, err
	}
	err = m.forEachNz(func(row, col, _ int, v float32) {
		if row == col {
			out.Set(0, row, v)
		}
	})
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
