package cusp

import "math"

// Optimizer update rules. The receiver holds gradients stored sparsely;
// each rule updates dense accumulator state (and, where applicable, the
// dense parameter matrix) visiting only the stored gradient positions.
// Rules that smooth the gradient write the smoothed value back into the
// sparse storage so the caller can apply it.
//
// Accumulator layout: where a rule needs more than one state per
// element, the states are concatenated in the accumulator matrix c.
// State s of element (i, j) lives at s*n + i*cols + j with
// n = rows*cols of the gradient. checkStateCapacity validates this.

func (m *SparseMatrix) checkStateCapacity(op string, c *Dense, states int) error {
	if err := checkSameDevice(op, m.DeviceID(), c.DeviceID()); err != nil {
		return err
	}
	if c.Rows()*c.Cols() < states*m.NumElements() {
		return NewInvalidArgError(op, "accumulator too small for optimizer state")
	}
	return nil
}

func unitGainFactor(momentum float32, unitGainMomentum bool) float32 {
	if unitGainMomentum {
		return 1 - momentum
	}
	return 1
}

// NormalGrad performs a momentum update: the accumulator c decays by
// momentum and absorbs each stored gradient, and the smoothed gradient
// replaces the stored value.
func (m *SparseMatrix) NormalGrad(c *Dense, momentum float32, unitGainMomentum bool) error {
	if err := m.checkStateCapacity("NormalGrad", c, 1); err != nil {
		return err
	}
	ug := unitGainFactor(momentum, unitGainMomentum)
	cols := m.NumCols()
	cData := c.Float32()
	vals := m.valuesRaw()
	return m.forEachStored(func(row, col, k int, g float32) {
		idx := row*cols + col
		cData[idx] = momentum*cData[idx] + ug*g
		vals[k] = cData[idx]
	})
}

// Adagrad accumulates squared gradients in c and scales each stored
// gradient by the inverse root of its accumulated square. When
// needAveMultiplier is true it returns the average applied multiplier,
// which callers use for unbiasing; otherwise it returns 1.
func (m *SparseMatrix) Adagrad(c *Dense, needAveMultiplier bool) (float32, error) {
	if err := m.checkStateCapacity("Adagrad", c, 1); err != nil {
		return 0, err
	}
	cols := m.NumCols()
	cData := c.Float32()
	vals := m.valuesRaw()
	var aveMultiplier float64
	count := 0
	err := m.forEachStored(func(row, col, k int, g float32) {
		idx := row*cols + col
		cData[idx] += g * g
		den := float32(math.Sqrt(float64(cData[idx]))) + AdagradFloor
		vals[k] = g / den
		if needAveMultiplier {
			aveMultiplier += 1 / float64(den)
			count++
		}
	})
	if err != nil {
		return 0, err
	}
	if needAveMultiplier && count > 0 {
		return float32(aveMultiplier / float64(count)), nil
	}
	return 1, nil
}

// FSAdagrad combines an exponentially smoothed squared-gradient scale
// with a momentum term. c holds two states per element (smoothed square,
// smoothed gradient); functionValues receives the parameter update.
func (m *SparseMatrix) FSAdagrad(c, functionValues *Dense, learnRatePerSample, momentum, adaWeight, adaMul float32, unitGainMomentum bool) error {
	if err := m.checkStateCapacity("FSAdagrad", c, 2); err != nil {
		return err
	}
	if err := checkSameDevice("FSAdagrad", m.DeviceID(), functionValues.DeviceID()); err != nil {
		return err
	}
	n := m.NumElements()
	cols := m.NumCols()
	ug := unitGainFactor(momentum, unitGainMomentum)
	cData := c.Float32()
	fv := functionValues.Float32()
	return m.forEachStored(func(row, col, _ int, g float32) {
		idx := row*cols + col
		adaSqr := adaWeight*cData[idx] + (1-adaWeight)*g*g
		cData[idx] = adaSqr
		scaled := float32(0)
		if adaSqr != 0 {
			scaled = adaMul * g / float32(math.Sqrt(float64(adaSqr)))
		}
		cData[n+idx] = momentum*cData[n+idx] + ug*scaled
		fv[idx] -= learnRatePerSample * cData[n+idx]
	})
}

// RmsProp scales each stored gradient by a per-weight step size that
// grows while the gradient sign is stable and shrinks when it flips,
// normalized by a smoothed squared gradient. c holds three states per
// element (smoothed square, last sign, step size). Returns the average
// applied multiplier when requested, else 1. Pass initialized=false on
// the first call so the state is seeded from the current gradients.
func (m *SparseMatrix) RmsProp(c *Dense, rmsGamma, rmsWgtInc, rmsWgtMax, rmsWgtDec, rmsWgtMin float32, needAveMultiplier, initialized bool) (float32, error) {
	if err := m.checkStateCapacity("RmsProp", c, 3); err != nil {
		return 0, err
	}
	n := m.NumElements()
	cols := m.NumCols()
	cData := c.Float32()
	vals := m.valuesRaw()

	if !initialized {
		if err := m.forEachStored(func(row, col, _ int, g float32) {
			idx := row*cols + col
			cData[idx] = g * g
			cData[n+idx] = 0
			cData[2*n+idx] = 1
		}); err != nil {
			return 0, err
		}
	}

	var aveMultiplier float64
	count := 0
	err := m.forEachStored(func(row, col, k int, g float32) {
		idx := row*cols + col
		avars := rmsGamma*cData[idx] + (1-rmsGamma)*g*g
		cData[idx] = avars

		sign := float32(0)
		if g > 0 {
			sign = 1
		} else if g < 0 {
			sign = -1
		}
		steps := cData[2*n+idx]
		if cData[n+idx]*sign > 0 {
			steps = min(steps*rmsWgtInc, rmsWgtMax)
		} else {
			steps = max(steps*rmsWgtDec, rmsWgtMin)
		}
		cData[2*n+idx] = steps
		cData[n+idx] = sign

		a := steps / (float32(math.Sqrt(float64(avars))) + AdagradFloor)
		vals[k] = g * a
		if needAveMultiplier {
			aveMultiplier += float64(a)
			count++
		}
	})
	if err != nil {
		return 0, err
	}
	if needAveMultiplier && count > 0 {
		return float32(aveMultiplier / float64(count)), nil
	}
	return 1, nil
}

// Adam updates functionValues with the Adam rule (or Adamax when adamax
// is true). c holds two states per element: the smoothed squared
// gradient (or running max magnitude for Adamax) and the smoothed
// gradient.
func (m *SparseMatrix) Adam(c, functionValues *Dense, learnRatePerSample, momentum, adaWeight, adaMul, epsilon float32, unitGainMomentum, adamax bool) error {
	if err := m.checkStateCapacity("Adam", c, 2); err != nil {
		return err
	}
	if err := checkSameDevice("Adam", m.DeviceID(), functionValues.DeviceID()); err != nil {
		return err
	}
	n := m.NumElements()
	cols := m.NumCols()
	ug := unitGainFactor(momentum, unitGainMomentum)
	cData := c.Float32()
	fv := functionValues.Float32()
	return m.forEachStored(func(row, col, _ int, g float32) {
		idx := row*cols + col
		var basis float32
		if adamax {
			ada := max(adaWeight*cData[idx], float32(math.Abs(float64(g))))
			cData[idx] = ada
			basis = ada + epsilon
		} else {
			ada := adaWeight*cData[idx] + (1-adaWeight)*g*g
			cData[idx] = ada
			basis = float32(math.Sqrt(float64(ada))) + epsilon
		}
		cData[n+idx] = momentum*cData[n+idx] + ug*g
		fv[idx] -= learnRatePerSample * adaMul * cData[n+idx] / basis
	})
}

// AdaDelta updates functionValues with the AdaDelta rule. c holds two
// states per element: the smoothed squared gradient and the smoothed
// squared update.
func (m *SparseMatrix) AdaDelta(c, functionValues *Dense, learningRate, rho, epsilon float32) error {
	if err := m.checkStateCapacity("AdaDelta", c, 2); err != nil {
		return err
	}
	if err := checkSameDevice("AdaDelta", m.DeviceID(), functionValues.DeviceID()); err != nil {
		return err
	}
	n := m.NumElements()
	cols := m.NumCols()
	cData := c.Float32()
	fv := functionValues.Float32()
	return m.forEachStored(func(row, col, _ int, g float32) {
		idx := row*cols + col
		sqAvg := rho*cData[idx] + (1-rho)*g*g
		cData[idx] = sqAvg
		dx := -float32(math.Sqrt(float64((cData[n+idx]+epsilon)/(sqAvg+epsilon)))) * g
		cData[n+idx] = rho*cData[n+idx] + (1-rho)*dx*dx
		fv[idx] += learningRate * dx
	})
}
