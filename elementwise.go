package cusp

import "math"

// Element-wise unary transforms over the stored non-zero values.
// Entries absent from the sparse representation are implicitly zero and
// are never visited: InplaceExp of a sparse matrix leaves absent entries
// at zero rather than one, and ElementInverse never evaluates 1/0. This
// is a deliberate asymmetry with the dense equivalents.

type elementWiseOp int

const (
	opInverse elementWiseOp = iota
	opSigmoid
	opTanh
	opSqrt
	opExp
	opLog
	opAbs
	opLinearRectifierDerivative
)

// performElementWise is the single chokepoint for the unary transforms:
// it copies structure from src when src differs from m, applies the
// kernel to the values in use, and refreshes the non-zero cache.
func (m *SparseMatrix) performElementWise(kind elementWiseOp, src *SparseMatrix) error {
	if src != m {
		if err := m.SetValue(src); err != nil {
			return err
		}
	}
	vals := m.inUseValues()
	switch kind {
	case opInverse:
		for i, v := range vals {
			if v != 0 {
				vals[i] = 1 / v
			}
		}
	case opSigmoid:
		for i, v := range vals {
			vals[i] = float32(1 / (1 + math.Exp(-float64(v))))
		}
	case opTanh:
		for i, v := range vals {
			vals[i] = float32(math.Tanh(float64(v)))
		}
	case opSqrt:
		for i, v := range vals {
			vals[i] = float32(math.Sqrt(float64(v)))
		}
	case opExp:
		for i, v := range vals {
			vals[i] = float32(math.Exp(float64(v)))
		}
	case opLog:
		for i, v := range vals {
			vals[i] = float32(math.Log(float64(v)))
		}
	case opAbs:
		for i, v := range vals {
			vals[i] = float32(math.Abs(float64(v)))
		}
	case opLinearRectifierDerivative:
		for i, v := range vals {
			if v > 0 {
				vals[i] = 1
			} else {
				vals[i] = 0
			}
		}
	}
	return nil
}

// ElementInverse replaces every stored non-zero value v with 1/v.
func (m *SparseMatrix) ElementInverse() {
	m.performElementWise(opInverse, m)
}

// AssignElementInverseOf sets m to a with every stored value inverted.
func (m *SparseMatrix) AssignElementInverseOf(a *SparseMatrix) error {
	return m.performElementWise(opInverse, a)
}

// InplaceSigmoid applies the logistic function to every stored value.
func (m *SparseMatrix) InplaceSigmoid() {
	m.performElementWise(opSigmoid, m)
}

// AssignSigmoidOf sets m to sigmoid(a) over a's stored values.
func (m *SparseMatrix) AssignSigmoidOf(a *SparseMatrix) error {
	return m.performElementWise(opSigmoid, a)
}

// InplaceTanh applies tanh to every stored value.
func (m *SparseMatrix) InplaceTanh() {
	m.performElementWise(opTanh, m)
}

// AssignTanhOf sets m to tanh(a) over a's stored values.
func (m *SparseMatrix) AssignTanhOf(a *SparseMatrix) error {
	return m.performElementWise(opTanh, a)
}

// InplaceSqrt applies the square root to every stored value.
func (m *SparseMatrix) InplaceSqrt() {
	m.performElementWise(opSqrt, m)
}

// AssignSqrtOf sets m to sqrt(a) over a's stored values.
func (m *SparseMatrix) AssignSqrtOf(a *SparseMatrix) error {
	return m.performElementWise(opSqrt, a)
}

// InplaceExp exponentiates every stored value.
func (m *SparseMatrix) InplaceExp() {
	m.performElementWise(opExp, m)
}

// AssignExpOf sets m to exp(a) over a's stored values.
func (m *SparseMatrix) AssignExpOf(a *SparseMatrix) error {
	return m.performElementWise(opExp, a)
}

// InplaceLog applies the natural logarithm to every stored value.
func (m *SparseMatrix) InplaceLog() {
	m.performElementWise(opLog, m)
}

// AssignLogOf sets m to log(a) over a's stored values.
func (m *SparseMatrix) AssignLogOf(a *SparseMatrix) error {
	return m.performElementWise(opLog, a)
}

// InplaceAbs replaces every stored value with its absolute value.
func (m *SparseMatrix) InplaceAbs() {
	m.performElementWise(opAbs, m)
}

// AssignAbsOf sets m to |a| over a's stored values.
func (m *SparseMatrix) AssignAbsOf(a *SparseMatrix) error {
	return m.performElementWise(opAbs, a)
}

// InplaceLinearRectifierDerivative replaces every stored value with the
// ReLU derivative: 1 where positive, 0 elsewhere.
func (m *SparseMatrix) InplaceLinearRectifierDerivative() {
	m.performElementWise(opLinearRectifierDerivative, m)
}

// AssignLinearRectifierDerivativeOf sets m to the ReLU derivative of a's
// stored values.
func (m *SparseMatrix) AssignLinearRectifierDerivativeOf(a *SparseMatrix) error {
	return m.performElementWise(opLinearRectifierDerivative, a)
}

// InplaceTruncate clips every stored value into [-|threshold|, |threshold|].
func (m *SparseMatrix) InplaceTruncate(threshold float32) {
	t := float32(math.Abs(float64(threshold)))
	vals := m.inUseValues()
	for i, v := range vals {
		if v > t {
			vals[i] = t
		} else if v < -t {
			vals[i] = -t
		}
	}
}

// InplaceSoftThreshold shrinks every stored value toward zero by
// |threshold|, flushing values inside the band to zero.
func (m *SparseMatrix) InplaceSoftThreshold(threshold float32) {
	t := float32(math.Abs(float64(threshold)))
	vals := m.inUseValues()
	for i, v := range vals {
		switch {
		case v > t:
			vals[i] = v - t
		case v < -t:
			vals[i] = v + t
		default:
			vals[i] = 0
		}
	}
}

// InplaceTruncateBottom raises every stored value below threshold to
// threshold.
func (m *SparseMatrix) InplaceTruncateBottom(threshold float32) {
	vals := m.inUseValues()
	for i, v := range vals {
		if v < threshold {
			vals[i] = threshold
		}
	}
}

// AssignTruncateBottomOf sets m to a with values below threshold raised
// to it.
func (m *SparseMatrix) AssignTruncateBottomOf(a *SparseMatrix, threshold float32) error {
	if a != m {
		if err := m.SetValue(a); err != nil {
			return err
		}
	}
	m.InplaceTruncateBottom(threshold)
	return nil
}

// InplaceTruncateTop lowers every stored value above threshold to
// threshold.
func (m *SparseMatrix) InplaceTruncateTop(threshold float32) {
	vals := m.inUseValues()
	for i, v := range vals {
		if v > threshold {
			vals[i] = threshold
		}
	}
}

// AssignTruncateTopOf sets m to a with values above threshold lowered to
// it.
func (m *SparseMatrix) AssignTruncateTopOf(a *SparseMatrix, threshold float32) error {
	if a != m {
		if err := m.SetValue(a); err != nil {
			return err
		}
	}
	m.InplaceTruncateTop(threshold)
	return nil
}

// SetToZeroIfAbsLessThan flushes stored values with magnitude below
// threshold to zero. The entries stay stored; only their values change.
func (m *SparseMatrix) SetToZeroIfAbsLessThan(threshold float32) {
	vals := m.inUseValues()
	for i, v := range vals {
		if float32(math.Abs(float64(v))) < threshold {
			vals[i] = 0
		}
	}
}
