package cusp

import (
	"fmt"
)

// storageDescriptor carries the storage state of a sparse matrix as a
// plain value: logical extents, device residency, format, capacity and
// buffer ownership. SparseMatrix embeds it by composition and exposes it
// through accessor methods.
type storageDescriptor struct {
	numRows, numCols int
	format           MatrixFormat
	deviceID         int
	sizeAllocated    int  // reserved non-zero value slots
	blockSize        int  // populated blocks (block formats only)
	sliceViewOffset  int  // column shift for slice views (CSC family)
	external         bool // buffer belongs to another matrix
	buffer           DevicePtr
}

// nzCache is the lazily fetched non-zero count: either Unknown or
// Known(count). Fetching the true count from the device is a
// synchronization barrier, so every mutating method must either set the
// cache to the freshly known value or reset it to Unknown.
type nzCache struct {
	known bool
	count int
}

// SparseMatrix is a sparse matrix resident in device memory. All three
// sub-arrays (non-zero values, major index, secondary index) live packed
// in a single device buffer whose layout is determined by the format.
//
// A SparseMatrix is not safe for concurrent mutation; callers must
// serialize access to an instance.
type SparseMatrix struct {
	desc storageDescriptor
	nz   nzCache
}

// NewSparseMatrix creates a matrix with reserved capacity for numNZ
// non-zero values on the given device. A non-positive numNZ reserves
// DefaultNzReserve slots.
func NewSparseMatrix(numRows, numCols, numNZ, deviceID int, format MatrixFormat) (*SparseMatrix, error) {
	if numNZ <= 0 {
		numNZ = DefaultNzReserve
	}
	m := EmptySparseMatrix(deviceID, format)
	if err := m.Resize(numRows, numCols, numNZ, format, true); err != nil {
		return nil, err
	}
	return m, nil
}

// EmptySparseMatrix creates a 0x0 matrix with no buffer on the given
// device. The first Resize or RequireSizeAndAllocate call allocates it.
func EmptySparseMatrix(deviceID int, format MatrixFormat) *SparseMatrix {
	return &SparseMatrix{
		desc: storageDescriptor{format: format, deviceID: deviceID},
	}
}

// Basic accessors

// NumRows returns the declared logical row extent.
func (m *SparseMatrix) NumRows() int { return m.desc.numRows }

// NumCols returns the declared logical column extent.
func (m *SparseMatrix) NumCols() int { return m.desc.numCols }

// NumElements returns numRows*numCols.
func (m *SparseMatrix) NumElements() int { return m.desc.numRows * m.desc.numCols }

// Format returns the storage format.
func (m *SparseMatrix) Format() MatrixFormat { return m.desc.format }

// DeviceID returns the device this matrix resides on.
func (m *SparseMatrix) DeviceID() int { return m.desc.deviceID }

// SizeAllocated returns the reserved capacity in non-zero value slots.
func (m *SparseMatrix) SizeAllocated() int { return m.desc.sizeAllocated }

// BlockSize returns the number of populated blocks. Only meaningful for
// the block formats.
func (m *SparseMatrix) BlockSize() int { return m.desc.blockSize }

// OwnsBuffer reports whether this matrix owns its device allocation, as
// opposed to viewing another matrix's buffer.
func (m *SparseMatrix) OwnsBuffer() bool { return !m.desc.external }

// IsEmpty reports whether the matrix has zero extent.
func (m *SparseMatrix) IsEmpty() bool { return m.desc.numRows == 0 && m.desc.numCols == 0 }

// Buffer returns the raw packed device buffer.
func (m *SparseMatrix) Buffer() DevicePtr { return m.desc.buffer }

// BufferSizeAllocated returns the byte capacity of the packed buffer.
func (m *SparseMatrix) BufferSizeAllocated() int { return m.desc.buffer.Size() }

func (m *SparseMatrix) device() *Device {
	d, err := GetDevice(m.desc.deviceID)
	if err != nil {
		panic(fmt.Sprintf("cusp: matrix on unknown device %d", m.desc.deviceID))
	}
	return d
}

// Sub-array views. These are recomputed from (format, extents, capacity)
// on every call; nothing caches a raw offset across reallocations.

// subViews carves a packed buffer into its three typed sub-arrays at full
// allocated lengths. Pure layout math; no slice-view offset applied.
func subViews(buf DevicePtr, numRows, numCols, sizeAllocated int, format MatrixFormat) (values []float32, major, secondary []int32) {
	if buf.IsNil() {
		return nil, nil, nil
	}
	majorLen := MajorIndexCount(numRows, numCols, sizeAllocated, format)
	secLen := SecondaryIndexCount(numRows, numCols, sizeAllocated, format)
	values = buf.Float32()[:sizeAllocated]
	majorBase := buf.Offset(ElemSize * sizeAllocated)
	major = majorBase.Int32()[:majorLen]
	secondary = majorBase.Offset(IndexSize * majorLen).Int32()[:secLen]
	return values, major, secondary
}

func (m *SparseMatrix) valuesRaw() []float32 {
	v, _, _ := subViews(m.desc.buffer, m.desc.numRows, m.desc.numCols, m.desc.sizeAllocated, m.desc.format)
	return v
}

func (m *SparseMatrix) majorRaw() []int32 {
	_, mj, _ := subViews(m.desc.buffer, m.desc.numRows, m.desc.numCols, m.desc.sizeAllocated, m.desc.format)
	return mj
}

func (m *SparseMatrix) secondaryRaw() []int32 {
	_, _, sec := subViews(m.desc.buffer, m.desc.numRows, m.desc.numCols, m.desc.sizeAllocated, m.desc.format)
	return sec
}

// MajorIndexLocation returns the major index array: row ids for CSC,
// column ids for CSR, block-to-column/row for the block formats.
//
// Note: this view does not honor the slice-view offset, while
// SecondaryIndexLocation does. The asymmetry is load-bearing; see
// MajorIndexLocationWithSliceViewOffset for the shifted view.
func (m *SparseMatrix) MajorIndexLocation() []int32 {
	return m.majorRaw()
}

// MajorIndexLocationWithSliceViewOffset returns the major index array
// starting at the first non-zero of the slice view.
func (m *SparseMatrix) MajorIndexLocationWithSliceViewOffset() []int32 {
	return m.majorRaw()[m.dataStart():]
}

// SecondaryIndexLocation returns the compressed index array, shifted by
// the slice-view offset: column pointers for CSC, row pointers for CSR,
// column/row-to-block for the block formats.
func (m *SparseMatrix) SecondaryIndexLocation() []int32 {
	sec := m.secondaryRaw()
	if m.desc.format.IsCompressed() {
		end := m.desc.sliceViewOffset + SecondaryIndexCount(m.desc.numRows, m.desc.numCols, m.desc.sizeAllocated, m.desc.format)
		return sec[m.desc.sliceViewOffset:end]
	}
	return sec
}

// SecondaryIndexValueAt reads one entry of the secondary index array back
// to the host. This is a device metadata readback and therefore crosses a
// synchronization barrier.
func (m *SparseMatrix) SecondaryIndexValueAt(idx int) int32 {
	m.device().Synchronize()
	return m.SecondaryIndexLocation()[idx]
}

// dataStart returns the value-array offset of the first in-use non-zero,
// which is nonzero only for slice views of CSC/CSR matrices.
func (m *SparseMatrix) dataStart() int {
	if m.desc.format.IsCompressed() && m.desc.sliceViewOffset > 0 {
		return int(m.secondaryRaw()[m.desc.sliceViewOffset])
	}
	return 0
}

// NzValues returns the in-use non-zero values of this matrix (or view).
func (m *SparseMatrix) NzValues() []float32 {
	start := m.dataStart()
	return m.valuesRaw()[start : start+m.NzCount()]
}

// RowLocation returns the array of row information: the major index for
// CSC, the secondary index for CSR. Only valid for compressed formats.
func (m *SparseMatrix) RowLocation() []int32 {
	assertFormat("RowLocation", m.desc.format, FormatCSR, FormatCSC)
	if m.desc.format == FormatCSR {
		return m.SecondaryIndexLocation()
	}
	return m.MajorIndexLocation()
}

// ColLocation returns the array of column information: the secondary
// index for CSC, the major index for CSR. Only valid for compressed
// formats.
func (m *SparseMatrix) ColLocation() []int32 {
	assertFormat("ColLocation", m.desc.format, FormatCSR, FormatCSC)
	if m.desc.format == FormatCSR {
		return m.MajorIndexLocation()
	}
	return m.SecondaryIndexLocation()
}

// BlockIDToColOrRow returns the slot-to-column (or slot-to-row) map of a
// block-format matrix.
func (m *SparseMatrix) BlockIDToColOrRow() []int32 {
	assertFormat("BlockIDToColOrRow", m.desc.format, FormatSparseBlockCol, FormatSparseBlockRow)
	return m.secondaryRaw()
}

// ColOrRowToBlockID returns the column-to-slot (or row-to-slot) map of a
// block-format matrix. Unpopulated columns/rows hold IndexNotAssigned.
func (m *SparseMatrix) ColOrRowToBlockID() []int32 {
	assertFormat("ColOrRowToBlockID", m.desc.format, FormatSparseBlockCol, FormatSparseBlockRow)
	return m.majorRaw()
}

// Non-zero count cache

// fetchNzCount determines the non-zero count from the device-side arrays.
// This is a device sync, and thus expensive; NzCount caches the result.
func (m *SparseMatrix) fetchNzCount() int {
	switch m.desc.format {
	case FormatCSC:
		return int(m.SecondaryIndexValueAt(m.desc.numCols) - m.SecondaryIndexValueAt(0))
	case FormatCSR:
		return int(m.SecondaryIndexValueAt(m.desc.numRows) - m.SecondaryIndexValueAt(0))
	case FormatSparseBlockCol:
		return m.desc.numRows * m.desc.blockSize
	default:
		panic(fmt.Sprintf("cusp: NzCount not implemented for format %s", m.desc.format))
	}
}

// NzCount returns the number of non-zero entries currently in use. The
// count is needed often in host-side preparations and fetching it from
// the device is expensive, so it is cached; a cached query performs no
// device access.
func (m *SparseMatrix) NzCount() int {
	if !m.nz.known {
		m.nz = nzCache{known: true, count: m.fetchNzCount()}
	}
	return m.nz.count
}

// NzBytes returns the number of value bytes in use.
func (m *SparseMatrix) NzBytes() int { return ElemSize * m.NzCount() }

// HasCachedNzCount reports whether a cached count is available.
func (m *SparseMatrix) HasCachedNzCount() bool { return m.nz.known }

// InvalidateCachedNzCount resets the cache to Unknown. Call this after
// any device-side operation that may change the element set without
// updating the cache itself.
func (m *SparseMatrix) InvalidateCachedNzCount() {
	m.nz = nzCache{}
}

// UpdateCachedNzCount sets the cache directly when the caller already
// knows the count host-side, avoiding a device fetch. When verify is
// true the count is re-fetched and compared, which crosses the very
// barrier the cache exists to avoid; pass false unless diagnosing.
func (m *SparseMatrix) UpdateCachedNzCount(nzCount int, verify bool) {
	m.nz = nzCache{known: true, count: nzCount}
	if verify {
		m.VerifyCachedNzCount(nzCount)
	}
}

// updateNzCount is the internal chokepoint used by mutating operations.
func (m *SparseMatrix) updateNzCount(nzCount int) {
	m.UpdateCachedNzCount(nzCount, VerifyNzCountUpdates)
}

// VerifyCachedNzCount re-fetches the count and panics if it disagrees
// with the supplied value. A mismatch means the cache diverged from
// device truth, which is a logic error, not a data error.
func (m *SparseMatrix) VerifyCachedNzCount(nzCount int) {
	if got := m.fetchNzCount(); got != nzCount {
		panic(fmt.Sprintf("cusp: cached NzCount %d does not match device-side count %d", nzCount, got))
	}
}

// Layout management

// Allocate ensures the packed buffer can hold numNZReserve non-zero
// values for the given extents in the current format. It reallocates
// only when the requested size exceeds the current capacity or growOnly
// is false. When keepExistingValues is true, values and indices in use
// are copied into the new buffer before the old one is released.
func (m *SparseMatrix) Allocate(numRows, numCols, numNZReserve int, growOnly, keepExistingValues bool) error {
	if m.desc.external {
		return NewInvalidArgError("Allocate", "cannot reallocate a slice view")
	}
	if numNZReserve <= 0 {
		numNZReserve = 1
	}
	need := BufferSizeNeeded(numRows, numCols, numNZReserve, m.desc.format)
	if !m.desc.buffer.IsNil() && need <= m.desc.buffer.Size() && growOnly {
		// Capacity already satisfies the request; never shrink under
		// growOnly, and never disturb data in use.
		return nil
	}

	newBuf, err := mallocOn(m.desc.deviceID, need)
	if err != nil {
		return err
	}
	if keepExistingValues && !m.desc.buffer.IsNil() {
		nzInUse := m.NzCount()
		if nzInUse > numNZReserve {
			return NewInvalidArgError("Allocate",
				fmt.Sprintf("new reserve %d would lose %d non-zero values in use", numNZReserve, nzInUse))
		}
		oldVals, oldMajor, oldSec := subViews(m.desc.buffer, numRows, numCols, m.desc.sizeAllocated, m.desc.format)
		newVals, newMajor, newSec := subViews(newBuf, numRows, numCols, numNZReserve, m.desc.format)

		valsInUse := nzInUse
		if m.desc.format.IsBlock() {
			valsInUse = m.blockValuesInUse()
		}
		copy(newVals, oldVals[:valsInUse])
		copy(newMajor, oldMajor[:MajorIndexCount(numRows, numCols, nzInUse, m.desc.format)])
		copy(newSec, oldSec[:SecondaryIndexCount(numRows, numCols, nzInUse, m.desc.format)])
	}
	if !m.desc.buffer.IsNil() {
		if err := freeOn(m.desc.deviceID, m.desc.buffer); err != nil {
			return err
		}
	}
	m.desc.buffer = newBuf
	m.desc.sizeAllocated = numNZReserve
	return nil
}

// blockValuesInUse returns the number of value slots a block format has
// in use: a full dense column/row per populated block.
func (m *SparseMatrix) blockValuesInUse() int {
	if m.desc.format == FormatSparseBlockCol {
		return m.desc.numRows * m.desc.blockSize
	}
	return m.desc.numCols * m.desc.blockSize
}

// Resize sets the extents and format and sizes the buffer for
// numNZReserve non-zeros. Existing contents are discarded; the matrix
// comes out empty. Reallocates only when the current capacity is
// insufficient or growOnly is false.
func (m *SparseMatrix) Resize(numRows, numCols, numNZReserve int, format MatrixFormat, growOnly bool) error {
	if m.desc.external {
		return NewInvalidArgError("Resize", "cannot resize a slice view")
	}
	if numNZReserve <= 0 {
		numNZReserve = 1
	}
	m.desc.numRows = numRows
	m.desc.numCols = numCols
	m.desc.format = format
	m.desc.blockSize = 0
	m.desc.sliceViewOffset = 0

	need := BufferSizeNeeded(numRows, numCols, numNZReserve, format)
	if m.desc.buffer.IsNil() || need > m.desc.buffer.Size() || !growOnly {
		if !m.desc.buffer.IsNil() {
			if err := freeOn(m.desc.deviceID, m.desc.buffer); err != nil {
				return err
			}
		}
		buf, err := mallocOn(m.desc.deviceID, need)
		if err != nil {
			return err
		}
		m.desc.buffer = buf
		m.desc.sizeAllocated = numNZReserve
	} else {
		// Reuse the buffer at its full capacity for the new layout.
		maxNZ, err := ComputeMaxNZElemFromBufferSize(numRows, numCols, m.desc.buffer.Size(), format)
		if err != nil {
			return err
		}
		m.desc.sizeAllocated = maxNZ
		clear(m.desc.buffer.Byte())
	}
	m.updateNzCount(0)
	return nil
}

// RequireSize ensures the matrix has the given extents and format,
// resizing only when they differ. Idempotent: a second call with
// identical arguments performs no reallocation.
func (m *SparseMatrix) RequireSize(numRows, numCols, numNZReserve int, format MatrixFormat, growOnly bool) error {
	if m.desc.format != format || m.desc.numRows != numRows || m.desc.numCols != numCols || m.desc.buffer.IsNil() {
		return m.Resize(numRows, numCols, numNZReserve, format, growOnly)
	}
	return nil
}

// RequireSizeAndAllocate ensures extents, format and non-zero capacity,
// allocating when the reserve is not yet satisfied. keepExistingValues
// preserves data in use across a capacity growth.
func (m *SparseMatrix) RequireSizeAndAllocate(numRows, numCols, numNZReserve int, format MatrixFormat, growOnly, keepExistingValues bool) error {
	if err := m.RequireSize(numRows, numCols, numNZReserve, format, growOnly); err != nil {
		return err
	}
	if numNZReserve > m.desc.sizeAllocated || !growOnly {
		return m.Allocate(numRows, numCols, numNZReserve, growOnly, keepExistingValues)
	}
	return nil
}

// Reset clears the matrix to all-zero without releasing its buffer.
func (m *SparseMatrix) Reset() {
	if !m.desc.buffer.IsNil() {
		clear(m.desc.buffer.Byte())
	}
	m.desc.blockSize = 0
	m.updateNzCount(0)
}

// Release frees the owned device buffer and zeroes the descriptor. A
// non-owning view releases nothing. Safe to call twice.
func (m *SparseMatrix) Release() error {
	if !m.desc.external && !m.desc.buffer.IsNil() {
		if err := freeOn(m.desc.deviceID, m.desc.buffer); err != nil {
			return err
		}
	}
	m.desc.buffer = DevicePtr{}
	m.desc.sizeAllocated = 0
	m.desc.numRows = 0
	m.desc.numCols = 0
	m.desc.blockSize = 0
	m.desc.sliceViewOffset = 0
	m.desc.external = false
	m.InvalidateCachedNzCount()
	return nil
}

// SetValue deep-copies another sparse matrix into this one, adopting its
// extents and format. The source must reside on the same device; use
// ChangeDeviceTo first otherwise.
func (m *SparseMatrix) SetValue(src *SparseMatrix) error {
	if src == m {
		// Reallocation would replace the buffer before the copy reads it.
		return nil
	}
	if src.desc.deviceID != m.desc.deviceID {
		return ErrDeviceMismatch
	}
	if err := m.RequireSizeAndAllocate(src.NumRows(), src.NumCols(), src.SizeAllocated(), src.Format(), false, false); err != nil {
		return err
	}
	copy(m.desc.buffer.Byte(), src.desc.buffer.Byte()[:min(src.desc.buffer.Size(), m.desc.buffer.Size())])
	m.desc.blockSize = src.desc.blockSize
	m.updateNzCount(src.NzCount())
	return nil
}

// ResizeAsAndCopyIndexFrom sizes this matrix like a and copies a's index
// arrays (not its values).
func (m *SparseMatrix) ResizeAsAndCopyIndexFrom(a *SparseMatrix, growOnly bool) error {
	nz := a.NzCount()
	if err := m.RequireSizeAndAllocate(a.NumRows(), a.NumCols(), nz, a.Format(), growOnly, false); err != nil {
		return err
	}
	_, aMajor, aSec := subViews(a.desc.buffer, a.desc.numRows, a.desc.numCols, a.desc.sizeAllocated, a.desc.format)
	_, mMajor, mSec := subViews(m.desc.buffer, m.desc.numRows, m.desc.numCols, m.desc.sizeAllocated, m.desc.format)
	copy(mMajor, aMajor[:MajorIndexCount(a.desc.numRows, a.desc.numCols, nz, a.desc.format)])
	copy(mSec, aSec[:SecondaryIndexCount(a.desc.numRows, a.desc.numCols, nz, a.desc.format)])
	m.desc.blockSize = a.desc.blockSize
	m.updateNzCount(nz)
	return nil
}

// ChangeDeviceTo moves the matrix buffer to another device's pool.
// Operations on matrices residing on different devices require this
// first. No-op when already resident on the target device.
func (m *SparseMatrix) ChangeDeviceTo(toID int) error {
	if toID == m.desc.deviceID {
		return nil
	}
	if m.desc.external {
		return NewInvalidArgError("ChangeDeviceTo", "cannot move a slice view between devices")
	}
	if m.desc.buffer.IsNil() {
		m.desc.deviceID = toID
		return nil
	}
	newBuf, err := mallocOn(toID, m.desc.buffer.Size())
	if err != nil {
		return err
	}
	if err := Memcpy(newBuf, m.desc.buffer, m.desc.buffer.Size(), MemcpyDeviceToDevice); err != nil {
		return err
	}
	if err := freeOn(m.desc.deviceID, m.desc.buffer); err != nil {
		return err
	}
	m.desc.buffer = newBuf
	m.desc.deviceID = toID
	return nil
}

// Reshape reinterprets a CSC matrix with new extents preserving
// column-major linear element order. numRows*numCols must be unchanged.
func (m *SparseMatrix) Reshape(numRows, numCols int) error {
	if m.desc.numRows == numRows && m.desc.numCols == numCols {
		return nil
	}
	if numRows*numCols != m.NumElements() {
		return ErrShapeMismatch
	}
	if m.desc.format != FormatCSC {
		return NewNotImplementedError("Reshape", m.desc.format)
	}
	nz := m.NzCount()
	oldRows := m.desc.numRows
	oldCols := m.desc.numCols
	reserve := m.desc.sizeAllocated
	vals := m.valuesRaw()
	major := m.majorRaw()
	sec := m.secondaryRaw()

	// Stage triples host-side with their column-major linear positions.
	// Source traversal is by column then row, so linear order is already
	// ascending and a single pass rebuilds the new columns.
	linear := make([]int, nz)
	value := make([]float32, nz)
	for j := 0; j < oldCols; j++ {
		for k := sec[j]; k < sec[j+1]; k++ {
			linear[k] = j*oldRows + int(major[k])
			value[k] = vals[k]
		}
	}

	// Resize handles the secondary index growing or shrinking with the
	// new column extent; the buffer comes back empty.
	if err := m.Resize(numRows, numCols, max(nz, reserve), FormatCSC, true); err != nil {
		return err
	}
	vals = m.valuesRaw()
	major = m.majorRaw()
	sec = m.secondaryRaw()
	for k := 0; k < nz; k++ {
		sec[linear[k]/numRows+1]++
		major[k] = int32(linear[k] % numRows)
		vals[k] = value[k]
	}
	for j := 0; j < numCols; j++ {
		sec[j+1] += sec[j]
	}
	m.updateNzCount(nz)
	return nil
}

// Validate checks the storage invariants of the packed representation
// and returns a descriptive error on the first violation.
func (m *SparseMatrix) Validate() error {
	switch m.desc.format {
	case FormatCSR, FormatCSC:
		sec := m.SecondaryIndexLocation()
		extent := m.desc.numCols
		majorBound := int32(m.desc.numRows)
		if m.desc.format == FormatCSR {
			extent = m.desc.numRows
			majorBound = int32(m.desc.numCols)
		}
		for i := 0; i < extent; i++ {
			if sec[i] > sec[i+1] {
				return NewExecutionError("Validate",
					fmt.Sprintf("secondary index not monotone at %d: %d > %d", i, sec[i], sec[i+1]), nil)
			}
		}
		nz := int(sec[extent] - sec[0])
		if nz > m.desc.sizeAllocated {
			return NewExecutionError("Validate",
				fmt.Sprintf("non-zero count %d exceeds allocated size %d", nz, m.desc.sizeAllocated), nil)
		}
		for _, idx := range m.MajorIndexLocation()[int(sec[0]):int(sec[extent])] {
			if idx < 0 || idx >= majorBound {
				return NewExecutionError("Validate",
					fmt.Sprintf("major index %d out of range [0,%d)", idx, majorBound), nil)
			}
		}
	case FormatSparseBlockCol, FormatSparseBlockRow:
		axis := m.desc.numCols
		if m.desc.format == FormatSparseBlockRow {
			axis = m.desc.numRows
		}
		if m.blockValuesInUse() > m.desc.sizeAllocated {
			return NewExecutionError("Validate",
				fmt.Sprintf("%d block values exceed allocated size %d", m.blockValuesInUse(), m.desc.sizeAllocated), nil)
		}
		toBlock := m.ColOrRowToBlockID()
		toAxis := m.BlockIDToColOrRow()
		for i := 0; i < axis; i++ {
			if toBlock[i] == IndexNotAssigned {
				continue
			}
			if toBlock[i] < 0 || int(toBlock[i]) >= m.desc.blockSize {
				return NewExecutionError("Validate",
					fmt.Sprintf("block id %d at %d out of range [0,%d)", toBlock[i], i, m.desc.blockSize), nil)
			}
			if int(toAxis[toBlock[i]]) != i {
				return NewExecutionError("Validate",
					fmt.Sprintf("block map mismatch: slot %d maps back to %d, want %d", toBlock[i], toAxis[toBlock[i]], i), nil)
			}
		}
	default:
		return NewNotImplementedError("Validate", m.desc.format)
	}
	return nil
}
