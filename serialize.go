package cusp

import (
	"encoding/binary"
	"io"
)

// Binary serialization of sparse matrices. The encoding is little-endian
// and self-describing enough to restore format, extents and contents
// exactly; round-tripping a matrix yields an equal matrix in the same
// format.
//
// Layout: header (magic, version, format, rows, cols, nz, blockSize)
// followed by the index and value arrays of the format. Compressed
// matrices write secondary, major, values; block matrices write the
// column/row-to-block map, the block-to-column/row map, and the dense
// block values.

const (
	serialMagic   uint32 = 0x43555350 // "CUSP"
	serialVersion uint32 = 1
)

type serialHeader struct {
	Magic     uint32
	Version   uint32
	Format    int32
	Rows      int64
	Cols      int64
	Nz        int64
	BlockSize int64
}

type countWriter struct {
	w io.Writer
	n int64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countReader struct {
	r io.Reader
	n int64
}

func (cr *countReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// WriteTo serializes the matrix to w. Slice views serialize as the
// standalone matrix they present.
func (m *SparseMatrix) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	nz := 0
	switch {
	case m.desc.format.IsBlock():
		// Block storage carries its extent in the descriptor; no cache
		// or device readback involved.
		nz = m.desc.blockSize * m.desc.numRows
		if m.desc.format == FormatSparseBlockRow {
			nz = m.desc.blockSize * m.desc.numCols
		}
	default:
		nz = m.NzCount()
	}
	hdr := serialHeader{
		Magic:     serialMagic,
		Version:   serialVersion,
		Format:    int32(m.desc.format),
		Rows:      int64(m.desc.numRows),
		Cols:      int64(m.desc.numCols),
		Nz:        int64(nz),
		BlockSize: int64(m.desc.blockSize),
	}
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return cw.n, err
	}

	switch {
	case m.desc.format.IsCompressed():
		extent := m.desc.numCols
		if m.desc.format == FormatCSR {
			extent = m.desc.numRows
		}
		compPtr, majorIdx, vals, err := m.getCompressedToHost(extent)
		if err != nil {
			return cw.n, err
		}
		for _, arr := range []interface{}{compPtr, majorIdx, vals} {
			if err := binary.Write(cw, binary.LittleEndian, arr); err != nil {
				return cw.n, err
			}
		}
	case m.desc.format.IsBlock():
		axis := m.desc.numCols
		blockLen := m.desc.numRows
		if m.desc.format == FormatSparseBlockRow {
			axis, blockLen = m.desc.numRows, m.desc.numCols
		}
		toBlock := m.majorRaw()[:axis]
		toAxis := m.secondaryRaw()[:m.desc.blockSize]
		vals := m.valuesRaw()[:m.desc.blockSize*blockLen]
		for _, arr := range []interface{}{toBlock, toAxis, vals} {
			if err := binary.Write(cw, binary.LittleEndian, arr); err != nil {
				return cw.n, err
			}
		}
	default:
		return cw.n, NewNotImplementedError("WriteTo", m.desc.format)
	}
	return cw.n, nil
}

// ReadFrom replaces the matrix contents with a matrix deserialized from
// r, resizing as needed.
func (m *SparseMatrix) ReadFrom(r io.Reader) (int64, error) {
	const op = "ReadFrom"
	cr := &countReader{r: r}
	var hdr serialHeader
	if err := binary.Read(cr, binary.LittleEndian, &hdr); err != nil {
		return cr.n, err
	}
	if hdr.Magic != serialMagic {
		return cr.n, NewInvalidArgError(op, "bad magic")
	}
	if hdr.Version != serialVersion {
		return cr.n, NewInvalidArgError(op, "unsupported version")
	}
	format := MatrixFormat(hdr.Format)
	rows, cols, nz := int(hdr.Rows), int(hdr.Cols), int(hdr.Nz)
	if rows < 0 || cols < 0 || nz < 0 {
		return cr.n, NewInvalidArgError(op, "negative extent")
	}

	switch {
	case format.IsCompressed():
		extent := cols
		if format == FormatCSR {
			extent = rows
		}
		compPtr := make([]int32, extent+1)
		majorIdx := make([]int32, nz)
		vals := make([]float32, nz)
		for _, arr := range []interface{}{compPtr, majorIdx, vals} {
			if err := binary.Read(cr, binary.LittleEndian, arr); err != nil {
				return cr.n, err
			}
		}
		if format == FormatCSC {
			return cr.n, m.SetMatrixFromCSCFormat(compPtr, majorIdx, vals, rows, cols, nil)
		}
		return cr.n, m.SetMatrixFromCSRFormat(compPtr, majorIdx, vals, rows, cols, nil)
	case format.IsBlock():
		axis, blockLen := cols, rows
		if format == FormatSparseBlockRow {
			axis, blockLen = rows, cols
		}
		blocks := int(hdr.BlockSize)
		if blocks < 0 || blocks > axis || nz != blocks*blockLen {
			return cr.n, NewInvalidArgError(op, "inconsistent block header")
		}
		toBlock := make([]int32, axis)
		toAxis := make([]int32, blocks)
		vals := make([]float32, blocks*blockLen)
		for _, arr := range []interface{}{toBlock, toAxis, vals} {
			if err := binary.Read(cr, binary.LittleEndian, arr); err != nil {
				return cr.n, err
			}
		}
		if err := m.RequireSizeAndAllocate(rows, cols, nz, format, true, false); err != nil {
			return cr.n, err
		}
		dv, dm, ds := subViews(m.desc.buffer, rows, cols, m.desc.sizeAllocated, format)
		copy(dm, toBlock)
		copy(ds, toAxis)
		copy(dv, vals)
		m.desc.blockSize = blocks
		m.updateNzCount(nz)
		return cr.n, nil
	default:
		return cr.n, NewNotImplementedError(op, format)
	}
}
