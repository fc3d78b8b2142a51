package cusp

import "testing"

func TestAreEqual(t *testing.T) {
	a := makeSparse(t, 2, 2, FormatCSC, []float32{1, 0, 0, 2})
	b := makeSparse(t, 2, 2, FormatCSR, []float32{1, 0, 0, 2})
	if !AreEqual(a, b, DefaultEqualityThreshold) {
		t.Error("equal matrices in different formats must compare equal")
	}
}

// The threshold is what separates equal from unequal: 1.0000001 and 1.0
// agree under 1e-6 and disagree under 1e-12.
func TestAreEqualThreshold(t *testing.T) {
	a := makeSparse(t, 1, 1, FormatCSC, []float32{1.0000001})
	b := makeSparse(t, 1, 1, FormatCSC, []float32{1.0})
	if !AreEqual(a, b, 1e-6) {
		t.Error("difference below threshold must compare equal")
	}
	if AreEqual(a, b, 1e-12) {
		t.Error("difference above threshold must compare unequal")
	}
}

func TestAreEqualShapeMismatch(t *testing.T) {
	a := makeSparse(t, 2, 2, FormatCSC, []float32{1, 0, 0, 2})
	b := makeSparse(t, 2, 3, FormatCSC, []float32{1, 0, 0, 0, 2, 0})
	if AreEqual(a, b, 1) {
		t.Error("different extents can never compare equal")
	}
}

// Entries absent from one side compare against exact zero on the other.
func TestAreEqualAbsentEntries(t *testing.T) {
	a := makeSparse(t, 2, 2, FormatCSC, []float32{1, 0, 0, 0})
	b := makeSparse(t, 2, 2, FormatCSC, []float32{1, 0, 0, 2})
	if AreEqual(a, b, 1e-6) {
		t.Error("a stored 2 against an absent entry must compare unequal")
	}
	if !AreEqual(a, b, 3) {
		t.Error("the same pair within a loose threshold must compare equal")
	}
}

func TestIsEqualToDense(t *testing.T) {
	a := makeSparse(t, 2, 2, FormatCSR, []float32{1, 0, 0, 2})
	d := makeDense(t, 2, 2, []float32{1, 0, 0, 2})
	if !a.IsEqualToDense(d, DefaultEqualityThreshold) {
		t.Error("matching sparse and dense must compare equal")
	}
	d.Set(0, 1, 5)
	if a.IsEqualToDense(d, DefaultEqualityThreshold) {
		t.Error("a dense entry at a sparse hole must compare unequal")
	}
}
