package cusp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColumnSlice(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	view, err := m.ColumnSlice(1, 2)
	if err != nil {
		t.Fatalf("ColumnSlice: %v", err)
	}
	if view.OwnsBuffer() {
		t.Error("a slice view must not own the buffer")
	}
	if view.NumRows() != 3 || view.NumCols() != 2 {
		t.Fatalf("view extents %dx%d, want 3x2", view.NumRows(), view.NumCols())
	}
	if view.NzCount() != 2 {
		t.Errorf("view NzCount = %d, want 2", view.NzCount())
	}
	want := []float32{
		0, 0,
		2, 0,
		0, 3,
	}
	if diff := cmp.Diff(want, hostValues(t, view)); diff != "" {
		t.Errorf("view contents (-want +got):\n%s", diff)
	}
}

// The index accessors of a view are asymmetric on purpose: the secondary
// index shifts with the slice, the major index does not.
func TestColumnSliceIndexViews(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	view, err := m.ColumnSlice(1, 2)
	if err != nil {
		t.Fatalf("ColumnSlice: %v", err)
	}

	sec := view.SecondaryIndexLocation()
	if len(sec) != 3 {
		t.Fatalf("secondary length %d, want 3", len(sec))
	}
	if sec[0] != 2 || sec[2] != 4 {
		t.Errorf("secondary = %v, want base offsets [2 3 4]", sec)
	}

	if &view.MajorIndexLocation()[0] != &m.MajorIndexLocation()[0] {
		t.Error("major index of a view must start at the parent's base")
	}
	shifted := view.MajorIndexLocationWithSliceViewOffset()
	if shifted[0] != 1 {
		t.Errorf("shifted major starts with row %d, want 1", shifted[0])
	}

	vals := view.NzValues()
	if diff := cmp.Diff([]float32{2, 3}, vals); diff != "" {
		t.Errorf("view NzValues (-want +got):\n%s", diff)
	}
}

// Views share storage with the parent; no values are copied.
func TestColumnSliceAliasesParent(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	view, err := m.ColumnSlice(1, 2)
	if err != nil {
		t.Fatalf("ColumnSlice: %v", err)
	}
	m.NzValues()[2] = 42 // entry (1,1) of the parent
	if view.NzValues()[0] != 42 {
		t.Error("view did not observe a parent write")
	}
}

func TestColumnSliceOfSlice(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	outer, err := m.ColumnSlice(1, 3)
	if err != nil {
		t.Fatalf("outer slice: %v", err)
	}
	inner, err := outer.ColumnSlice(1, 1)
	if err != nil {
		t.Fatalf("inner slice: %v", err)
	}
	// Column 2 of the parent.
	want := []float32{0, 0, 3}
	if diff := cmp.Diff(want, hostValues(t, inner)); diff != "" {
		t.Errorf("nested slice (-want +got):\n%s", diff)
	}
}

func TestColumnSliceBounds(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	if _, err := m.ColumnSlice(2, 3); err == nil {
		t.Error("expected an out-of-range error")
	}
	if _, err := m.ColumnSlice(-1, 1); err == nil {
		t.Error("expected an error for a negative start")
	}
}

func TestColumnSliceRequiresCSC(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSR, conversionFixture)
	if _, err := m.ColumnSlice(0, 2); !IsNotImplementedError(err) {
		t.Errorf("ColumnSlice on CSR = %v, want a not-implemented error", err)
	}
}

func TestCopyColumnSliceToDense(t *testing.T) {
	m := makeSparse(t, 3, 4, FormatCSC, conversionFixture)
	d, err := m.CopyColumnSliceToDense(3, 1)
	if err != nil {
		t.Fatalf("CopyColumnSliceToDense: %v", err)
	}
	defer d.Release()
	if diff := cmp.Diff([]float32{4, 0, 0}, d.Float32()); diff != "" {
		t.Errorf("column 3 (-want +got):\n%s", diff)
	}
}
