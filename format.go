package cusp

import "fmt"

// MatrixFormat identifies a sparse storage layout. The format is mutually
// exclusive and determines the buffer layout and which accessors are valid.
type MatrixFormat int

const (
	// FormatCSR stores rows compressed: values and column ids per non-zero,
	// plus a row pointer array of length numRows+1.
	FormatCSR MatrixFormat = iota

	// FormatCSC stores columns compressed: values and row ids per non-zero,
	// plus a column pointer array of length numCols+1.
	FormatCSC

	// FormatSparseBlockCol stores whole columns densely: the value array
	// holds numRows values per populated column, the major index maps each
	// column to a storage slot (or IndexNotAssigned), and the secondary
	// index maps each slot back to its column.
	FormatSparseBlockCol

	// FormatSparseBlockRow is the row-wise analog of FormatSparseBlockCol.
	FormatSparseBlockRow

	// FormatCOO stores coordinate triples. Only layout sizing is supported;
	// operations on COO matrices fault NotImplemented.
	FormatCOO
)

// String implements fmt.Stringer
func (f MatrixFormat) String() string {
	switch f {
	case FormatCSR:
		return "CSR"
	case FormatCSC:
		return "CSC"
	case FormatSparseBlockCol:
		return "SparseBlockCol"
	case FormatSparseBlockRow:
		return "SparseBlockRow"
	case FormatCOO:
		return "COO"
	default:
		return fmt.Sprintf("MatrixFormat(%d)", int(f))
	}
}

// IsCompressed reports whether the format is CSR or CSC.
func (f MatrixFormat) IsCompressed() bool {
	return f == FormatCSR || f == FormatCSC
}

// IsBlock reports whether the format is one of the block formats.
func (f MatrixFormat) IsBlock() bool {
	return f == FormatSparseBlockCol || f == FormatSparseBlockRow
}

// isRowMajor reports whether the compressed axis is the row axis.
func (f MatrixFormat) isRowMajor() bool {
	return f == FormatCSR || f == FormatSparseBlockRow
}

// Layout math. Everything below is a pure function from
// (format, extents, counts) to sub-array lengths and byte sizes; the
// packed buffer is always values, then major index, then secondary index,
// with no padding. Accessors recompute sub-views from these functions on
// demand rather than caching raw offsets, so a reallocation can never
// leave a dangling offset behind.

// MajorIndexCount returns the length of the major index array for the
// given extents, non-zero count and format.
//
//	CSR/CSC:        nnz (column ids / row ids)
//	SparseBlockCol: numCols (column -> storage slot)
//	SparseBlockRow: numRows (row -> storage slot)
func MajorIndexCount(numRows, numCols, numNZ int, format MatrixFormat) int {
	switch format {
	case FormatSparseBlockCol:
		return numCols
	case FormatSparseBlockRow:
		return numRows
	default:
		return numNZ
	}
}

// SecondaryIndexCount returns the length of the secondary index array for
// the given extents, reserved non-zero count and format.
//
//	CSR:            numRows+1 (row pointers)
//	CSC:            numCols+1 (column pointers)
//	SparseBlockCol: numCols   (slot -> column; allocated for the worst case)
//	SparseBlockRow: numRows   (slot -> row; allocated for the worst case)
//	COO:            nnz reserved
func SecondaryIndexCount(numRows, numCols, numNZReserved int, format MatrixFormat) int {
	switch format {
	case FormatSparseBlockCol:
		return numCols
	case FormatSparseBlockRow:
		return numRows
	case FormatCSC:
		return numCols + 1
	case FormatCSR:
		return numRows + 1
	default:
		return numNZReserved // COO
	}
}

// BufferSizeNeeded returns the packed buffer size in bytes required to
// hold numNZ reserved non-zero values plus both index arrays.
func BufferSizeNeeded(numRows, numCols, numNZ int, format MatrixFormat) int {
	return ElemSize*numNZ +
		IndexSize*(MajorIndexCount(numRows, numCols, numNZ, format)+
			SecondaryIndexCount(numRows, numCols, numNZ, format))
}

// ComputeMaxNZElemFromBufferSize returns how many non-zero value slots a
// buffer of the given byte size can hold for the given extents and format.
// Inverse of BufferSizeNeeded for the formats whose index space does not
// itself grow with nnz being solved for.
func ComputeMaxNZElemFromBufferSize(numRows, numCols, bufferSize int, format MatrixFormat) (int, error) {
	switch format {
	case FormatSparseBlockCol:
		return (bufferSize - 2*IndexSize*numCols) / ElemSize, nil
	case FormatSparseBlockRow:
		return (bufferSize - 2*IndexSize*numRows) / ElemSize, nil
	case FormatCSC:
		return (bufferSize - IndexSize*(numCols+1)) / (IndexSize + ElemSize), nil
	case FormatCSR:
		return (bufferSize - IndexSize*(numRows+1)) / (IndexSize + ElemSize), nil
	default:
		return 0, NewNotImplementedError("ComputeMaxNZElemFromBufferSize", format)
	}
}
