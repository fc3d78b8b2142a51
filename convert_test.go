package cusp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var conversionFixture = []float32{
	1, 0, 0, 4,
	0, 2, 0, 0,
	5, 0, 3, 0,
}

// Every format pair must round-trip without touching a value.
func TestConversionRoundTrips(t *testing.T) {
	formats := []MatrixFormat{FormatCSC, FormatCSR, FormatSparseBlockCol, FormatSparseBlockRow}
	for _, from := range formats {
		for _, to := range formats {
			m := makeSparse(t, 3, 4, from, conversionFixture)
			if err := m.ConvertToSparseFormat(to); err != nil {
				t.Fatalf("%s -> %s: %v", from, to, err)
			}
			if m.Format() != to {
				t.Fatalf("%s -> %s: format is %s", from, to, m.Format())
			}
			if err := m.Validate(); err != nil {
				t.Errorf("%s -> %s: Validate: %v", from, to, err)
			}
			if diff := cmp.Diff(conversionFixture, hostValues(t, m)); diff != "" {
				t.Errorf("%s -> %s: values (-want +got):\n%s", from, to, diff)
			}
		}
	}
}

func TestConvertOutLeavesSourceIntact(t *testing.T) {
	src := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	dst := EmptySparseMatrix(0, FormatCSR)
	defer dst.Release()
	if err := src.ConvertToSparseFormatOut(FormatCSR, dst); err != nil {
		t.Fatalf("ConvertToSparseFormatOut: %v", err)
	}
	dst.NzValues()[0] = -99
	if diff := cmp.Diff(conversionFixture, hostValues(t, src)); diff != "" {
		t.Errorf("source modified (-want +got):\n%s", diff)
	}
}

func TestConvertSameFormatNoOp(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	before := m.desc.buffer.ptr
	if err := m.ConvertToSparseFormat(FormatCSC); err != nil {
		t.Fatalf("ConvertToSparseFormat: %v", err)
	}
	if m.desc.buffer.ptr != before {
		t.Error("same-format conversion touched the buffer")
	}
}

func TestSetFromDenseDropsZeros(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	if m.NzCount() != 6 {
		t.Errorf("NzCount = %d, want 6", m.NzCount())
	}
	// CSC column lanes must come out row-sorted.
	sec := m.SecondaryIndexLocation()
	major := m.MajorIndexLocation()
	for j := 0; j < m.NumCols(); j++ {
		for k := sec[j] + 1; k < sec[j+1]; k++ {
			if major[k-1] >= major[k] {
				t.Fatalf("column %d rows not strictly ascending", j)
			}
		}
	}
}

func TestDenseRoundTrip(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSR, conversionFixture)
	d, err := m.CopyToDense()
	if err != nil {
		t.Fatalf("CopyToDense: %v", err)
	}
	defer d.Release()
	if diff := cmp.Diff(conversionFixture, d.Float32()); diff != "" {
		t.Errorf("dense round trip (-want +got):\n%s", diff)
	}
}

func TestTranspose(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	tr, err := m.Transpose()
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	defer tr.Release()
	if tr.NumRows() != 4 || tr.NumCols() != 3 {
		t.Fatalf("transpose extents %dx%d", tr.NumRows(), tr.NumCols())
	}
	want := []float32{
		1, 0, 5,
		0, 2, 0,
		0, 0, 3,
		4, 0, 0,
	}
	if diff := cmp.Diff(want, hostValues(t, tr)); diff != "" {
		t.Errorf("transpose (-want +got):\n%s", diff)
	}
	if err := tr.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestInplaceTranspose(t *testing.T) {
	m := makeSparse(t, 2, 3, FormatCSR, []float32{
		1, 2, 0,
		0, 0, 3,
	})
	if err := m.InplaceTranspose(); err != nil {
		t.Fatalf("InplaceTranspose: %v", err)
	}
	want := []float32{
		1, 0,
		2, 0,
		0, 3,
	}
	if diff := cmp.Diff(want, hostValues(t, m)); diff != "" {
		t.Errorf("in-place transpose (-want +got):\n%s", diff)
	}
}

func TestDiagonalToDense(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	diag, err := m.DiagonalToDense()
	if err != nil {
		t.Fatalf("DiagonalToDense: %v", err)
	}
	defer diag.Release()
	if diag.Rows() != 1 || diag.Cols() != 3 {
		t.Fatalf("diagonal extents %dx%d, want 1x3", diag.Rows(), diag.Cols())
	}
	if diff := cmp.Diff([]float32{1, 2, 3}, diag.Float32()); diff != "" {
		t.Errorf("diagonal (-want +got):\n%s", diff)
	}
}
