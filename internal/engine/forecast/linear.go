package forecast

import (
	"fmt"
	"math"
)

// LinearModel is an ordinary least squares trend fit of price against the
// time index. Confidence is the fit's R-squared scaled to 0-100: a clean
// trend earns a confident extrapolation, a sideways scribble earns almost
// none.
type LinearModel struct {
	logPrice  bool
	n         int
	slope     float64
	intercept float64
	r2        float64
	lastValue float64
}

const linearMinPoints = 10

// NewLinearModel builds an unfitted trend model. With logPrice the fit runs
// on log closes, turning the extrapolation into constant compound growth.
func NewLinearModel(logPrice bool) *LinearModel {
	return &LinearModel{logPrice: logPrice}
}

func (m *LinearModel) Name() string { return "linear" }

func (m *LinearModel) Fit(closes []float64) error {
	if len(closes) < linearMinPoints {
		return ErrInsufficientData
	}

	y := make([]float64, len(closes))
	for i, c := range closes {
		if m.logPrice {
			if c <= 0 {
				return &FitError{Model: m.Name(), Reason: "non-positive price with log fit"}
			}
			y[i] = math.Log(c)
		} else {
			y[i] = c
		}
	}

	x := make([][]float64, len(y))
	for i := range y {
		x[i] = []float64{1, float64(i)}
	}
	beta, err := solveLeastSquares(x, y)
	if err != nil {
		return &FitError{Model: m.Name(), Reason: err.Error()}
	}
	m.intercept, m.slope = beta[0], beta[1]
	m.n = len(y)
	m.lastValue = closes[len(closes)-1]

	ybar := mean(y)
	var ssTot, ssRes float64
	for i, v := range y {
		fit := m.intercept + m.slope*float64(i)
		ssRes += (v - fit) * (v - fit)
		ssTot += (v - ybar) * (v - ybar)
	}
	if ssTot == 0 {
		// flat series: the fit is exact but carries no directional signal
		m.r2 = 0
	} else {
		m.r2 = 1 - ssRes/ssTot
	}
	return nil
}

func (m *LinearModel) Predict(horizon int) (float64, float64, error) {
	if m.n == 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "predict before fit"}
	}
	if horizon <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-positive horizon"}
	}
	v := m.intercept + m.slope*float64(m.n-1+horizon)
	if m.logPrice {
		v = math.Exp(v)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-finite projection"}
	}
	return v, clampConfidence(m.r2 * 100), nil
}

func (m *LinearModel) Features() string {
	return fmt.Sprintf("slope=%.6f intercept=%.4f r2=%.4f log=%t", m.slope, m.intercept, m.r2, m.logPrice)
}

var _ Model = (*LinearModel)(nil)
