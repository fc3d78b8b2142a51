package cusp

import (
	"math"
	"testing"
)

func gradFixture(t *testing.T) *SparseMatrix {
	return makeSparse(t, 2, 2, FormatCSC, []float32{
		1, 0,
		0, 2,
	})
}

func TestNormalGrad(t *testing.T) {
	g := gradFixture(t)
	c := makeDense(t, 2, 2, zeros(4))
	if err := g.NormalGrad(c, 0.9, false); err != nil {
		t.Fatalf("NormalGrad: %v", err)
	}
	// First step: momentum state was zero, so c absorbs the gradient and
	// the smoothed gradient equals the raw one.
	expectValues(t, "momentum state", c.Float32(), []float32{1, 0, 0, 2}, 1e-6)
	expectValues(t, "smoothed gradient", hostValues(t, g), []float32{1, 0, 0, 2}, 1e-6)

	// Second step with the same raw gradient: c = 0.9*c + g.
	g2 := gradFixture(t)
	if err := g2.NormalGrad(c, 0.9, false); err != nil {
		t.Fatalf("NormalGrad: %v", err)
	}
	expectValues(t, "momentum state", c.Float32(), []float32{1.9, 0, 0, 3.8}, 1e-5)
	expectValues(t, "smoothed gradient", hostValues(t, g2), []float32{1.9, 0, 0, 3.8}, 1e-5)
}

func TestNormalGradUnitGain(t *testing.T) {
	g := gradFixture(t)
	c := makeDense(t, 2, 2, zeros(4))
	if err := g.NormalGrad(c, 0.9, true); err != nil {
		t.Fatalf("NormalGrad: %v", err)
	}
	// Unit gain scales the gradient contribution by 1-momentum.
	expectValues(t, "momentum state", c.Float32(), []float32{0.1, 0, 0, 0.2}, 1e-6)
}

func TestAdagrad(t *testing.T) {
	g := makeSparse(t, 1, 2, FormatCSC, []float32{3, 4})
	c := makeDense(t, 1, 2, zeros(2))
	ave, err := g.Adagrad(c, true)
	if err != nil {
		t.Fatalf("Adagrad: %v", err)
	}
	expectValues(t, "squared accumulator", c.Float32(), []float32{9, 16}, 1e-6)
	expectValues(t, "scaled gradient", hostValues(t, g), []float32{1, 1}, 1e-5)
	expectNear(t, "average multiplier", ave, float32((1.0/3+1.0/4)/2), 1e-5)
}

func TestAdagradNoMultiplier(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 1, 1, zeros(1))
	ave, err := g.Adagrad(c, false)
	if err != nil {
		t.Fatalf("Adagrad: %v", err)
	}
	if ave != 1 {
		t.Errorf("multiplier = %g, want 1 when not requested", ave)
	}
}

func TestFSAdagrad(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 2, 1, zeros(2))
	fv := makeDense(t, 1, 1, zeros(1))
	if err := g.FSAdagrad(c, fv, 0.1, 0, 0.5, 1, false); err != nil {
		t.Fatalf("FSAdagrad: %v", err)
	}
	// adaSqr = 0.5*4 = 2; scaled = 2/sqrt(2); update = lr*scaled.
	expectNear(t, "adaSqr", c.Float32()[0], 2, 1e-6)
	expectNear(t, "functionValues", fv.Float32()[0], float32(-0.1*2/math.Sqrt(2)), 1e-6)
}

func TestRmsProp(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 3, 1, zeros(3))
	ave, err := g.RmsProp(c, 0.9, 1.2, 10, 0.75, 0.1, true, false)
	if err != nil {
		t.Fatalf("RmsProp: %v", err)
	}
	// Seeded state: avars = g*g, sign 0, step 1. The update sees a sign
	// change from 0 and shrinks the step to 0.75, giving the multiplier
	// 0.75/sqrt(4).
	expectNear(t, "average multiplier", ave, 0.375, 1e-5)
	expectValues(t, "scaled gradient", hostValues(t, g), []float32{0.75}, 1e-5)

	// Same-sign second step grows the step size.
	g2 := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	if _, err := g2.RmsProp(c, 0.9, 1.2, 10, 0.75, 0.1, false, true); err != nil {
		t.Fatalf("RmsProp: %v", err)
	}
	expectNear(t, "grown step", c.Float32()[2], 0.75*1.2, 1e-5)
}

func TestAdam(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 2, 1, zeros(2))
	fv := makeDense(t, 1, 1, zeros(1))
	if err := g.Adam(c, fv, 0.1, 0.9, 0.9, 1, 1e-8, true, false); err != nil {
		t.Fatalf("Adam: %v", err)
	}
	// ada = 0.1*4 = 0.4; smoothed = 0.1*2 = 0.2; fv -= lr*0.2/sqrt(0.4).
	expectNear(t, "smoothed square", c.Float32()[0], 0.4, 1e-6)
	expectNear(t, "smoothed gradient", c.Float32()[1], 0.2, 1e-6)
	expectNear(t, "functionValues", fv.Float32()[0], float32(-0.1*0.2/(math.Sqrt(0.4)+1e-8)), 1e-6)
}

func TestAdamax(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 2, 1, zeros(2))
	fv := makeDense(t, 1, 1, zeros(1))
	if err := g.Adam(c, fv, 0.1, 0.9, 0.9, 1, 0, true, true); err != nil {
		t.Fatalf("Adamax: %v", err)
	}
	// Max-form basis: max(0.9*0, |2|) = 2; fv -= 0.1*0.2/2.
	expectNear(t, "running max", c.Float32()[0], 2, 1e-6)
	expectNear(t, "functionValues", fv.Float32()[0], -0.01, 1e-6)
}

func TestAdaDelta(t *testing.T) {
	g := makeSparse(t, 1, 1, FormatCSC, []float32{2})
	c := makeDense(t, 2, 1, zeros(2))
	fv := makeDense(t, 1, 1, zeros(1))
	const (
		rho = 0.95
		eps = 1e-8
	)
	if err := g.AdaDelta(c, fv, 1, rho, eps); err != nil {
		t.Fatalf("AdaDelta: %v", err)
	}
	sqAvg := (1 - rho) * 4
	dx := -math.Sqrt((0+eps)/(sqAvg+eps)) * 2
	expectNear(t, "smoothed square", c.Float32()[0], float32(sqAvg), 1e-6)
	expectNear(t, "smoothed update", c.Float32()[1], float32((1-rho)*dx*dx), 1e-9)
	expectNear(t, "functionValues", fv.Float32()[0], float32(dx), 1e-7)
}

// Momentum must keep decaying at stored zero-gradient positions of a
// block matrix.
func TestNormalGradStoredZeros(t *testing.T) {
	g := makeSparse(t, 2, 1, FormatSparseBlockCol, []float32{1, 2})
	c := makeDense(t, 2, 1, zeros(2))
	if err := g.NormalGrad(c, 0.5, false); err != nil {
		t.Fatalf("NormalGrad: %v", err)
	}

	// Next step the block is still populated but the slot gradient is 0.
	g.NzValues()[0] = 0
	if err := g.NormalGrad(c, 0.5, false); err != nil {
		t.Fatalf("NormalGrad: %v", err)
	}
	expectNear(t, "decayed momentum", c.Float32()[0], 0.5, 1e-6)
	expectNear(t, "decayed slot value", hostValues(t, g)[0], 0.5, 1e-6)
}

func TestOptimizerStateTooSmall(t *testing.T) {
	g := gradFixture(t)
	c := makeDense(t, 1, 1, zeros(1))
	if err := g.NormalGrad(c, 0.9, false); !IsInvalidArgError(err) {
		t.Errorf("NormalGrad with a short accumulator = %v, want an invalid-arg error", err)
	}
	fv := makeDense(t, 2, 2, zeros(4))
	if err := g.Adam(c, fv, 0.1, 0.9, 0.9, 1, 1e-8, true, false); !IsInvalidArgError(err) {
		t.Errorf("Adam with a short accumulator = %v, want an invalid-arg error", err)
	}
}
