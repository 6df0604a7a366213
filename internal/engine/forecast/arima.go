package forecast

import (
	"fmt"
	"math"
)

// ARIMAModel is an autoregressive forecast on the d-times differenced
// series: AR coefficients are estimated by least squares and the lag order
// is chosen by AIC over 1..maxOrder. Forecasts are iterated one step at a
// time and integrated back to price space. Confidence comes from how much
// of the differenced variance the chosen AR fit explains.
type ARIMAModel struct {
	maxOrder int
	diff     int

	order     int
	coeffs    []float64 // coeffs[0] is the constant
	history   []float64 // differenced series
	tails     [][]float64
	lastPrice float64
	fitR2     float64
}

// NewARIMAModel builds an unfitted AR(d-differenced) model.
func NewARIMAModel(maxOrder, diff int) *ARIMAModel {
	return &ARIMAModel{maxOrder: maxOrder, diff: diff}
}

func (m *ARIMAModel) Name() string { return "arima" }

func (m *ARIMAModel) Fit(closes []float64) error {
	minLen := m.maxOrder + m.diff + 10
	if len(closes) < minLen {
		return ErrInsufficientData
	}

	series := append([]float64(nil), closes...)
	m.tails = nil
	for d := 0; d < m.diff; d++ {
		m.tails = append(m.tails, []float64{series[len(series)-1]})
		next := make([]float64, len(series)-1)
		for i := 1; i < len(series); i++ {
			next[i-1] = series[i] - series[i-1]
		}
		series = next
	}

	// A constant differenced series makes every lag column identical, so
	// least squares rejects all orders as singular. Model it directly as
	// AR(1) with a zero coefficient: each step repeats the constant
	// difference, and a flat price series projects zero change. The cutoff
	// is relative so float noise on a linear ramp does not reopen the
	// singular path.
	var ms float64
	for _, v := range series {
		ms += v * v
	}
	ms /= float64(len(series))
	if variance(series) <= ms*1e-12 {
		m.order = 1
		m.coeffs = []float64{mean(series), 0}
		m.history = series
		m.lastPrice = closes[len(closes)-1]
		m.fitR2 = 0
		return nil
	}

	bestAIC := math.Inf(1)
	var bestOrder int
	var bestCoeffs []float64
	for p := 1; p <= m.maxOrder; p++ {
		coeffs, sigma2, n, err := fitAR(series, p)
		if err != nil {
			continue
		}
		if sigma2 <= 0 {
			sigma2 = 1e-12
		}
		aic := float64(n)*math.Log(sigma2) + 2*float64(p+1)
		if aic < bestAIC {
			bestAIC = aic
			bestOrder = p
			bestCoeffs = coeffs
		}
	}
	if bestOrder == 0 {
		return &FitError{Model: m.Name(), Reason: "no AR order could be fitted"}
	}

	m.order = bestOrder
	m.coeffs = bestCoeffs
	m.history = series
	m.lastPrice = closes[len(closes)-1]

	// in-sample fit quality on the differenced series
	var ssRes, ssTot float64
	mu := mean(series[m.order:])
	for i := m.order; i < len(series); i++ {
		pred := m.coeffs[0]
		for j := 1; j <= m.order; j++ {
			pred += m.coeffs[j] * series[i-j]
		}
		ssRes += (series[i] - pred) * (series[i] - pred)
		ssTot += (series[i] - mu) * (series[i] - mu)
	}
	if ssTot == 0 {
		m.fitR2 = 0
	} else {
		m.fitR2 = 1 - ssRes/ssTot
		if m.fitR2 < 0 {
			m.fitR2 = 0
		}
	}
	return nil
}

// fitAR estimates y_t = c + phi_1*y_{t-1} + ... + phi_p*y_{t-p} by least
// squares, returning the coefficients, residual variance, and sample count.
func fitAR(series []float64, p int) ([]float64, float64, int, error) {
	n := len(series) - p
	if n < p+2 {
		return nil, 0, 0, ErrInsufficientData
	}
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		t := i + p
		row := make([]float64, p+1)
		row[0] = 1
		for j := 1; j <= p; j++ {
			row[j] = series[t-j]
		}
		x[i] = row
		y[i] = series[t]
	}
	coeffs, err := solveLeastSquares(x, y)
	if err != nil {
		return nil, 0, 0, err
	}
	var ss float64
	for i := 0; i < n; i++ {
		pred := coeffs[0]
		for j := 1; j <= p; j++ {
			pred += coeffs[j] * x[i][j]
		}
		ss += (y[i] - pred) * (y[i] - pred)
	}
	return coeffs, ss / float64(n), n, nil
}

func (m *ARIMAModel) Predict(horizon int) (float64, float64, error) {
	if m.order == 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "predict before fit"}
	}
	if horizon <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-positive horizon"}
	}

	work := append([]float64(nil), m.history...)
	forecasts := make([]float64, 0, horizon)
	for h := 0; h < horizon; h++ {
		pred := m.coeffs[0]
		for j := 1; j <= m.order; j++ {
			pred += m.coeffs[j] * work[len(work)-j]
		}
		work = append(work, pred)
		forecasts = append(forecasts, pred)
	}

	// integrate the differences back to price level
	price := m.lastPrice
	if m.diff == 0 {
		price = forecasts[len(forecasts)-1]
	} else {
		// cumulative sum per difference level; for diff=1 the price is
		// last + sum(forecasted changes)
		level := forecasts
		for d := m.diff - 1; d >= 0; d-- {
			base := m.tails[d][0]
			integrated := make([]float64, len(level))
			acc := base
			for i, v := range level {
				acc += v
				integrated[i] = acc
			}
			level = integrated
		}
		price = level[len(level)-1]
	}

	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-finite projection"}
	}
	return price, clampConfidence(m.fitR2 * 100), nil
}

func (m *ARIMAModel) Features() string {
	return fmt.Sprintf("order=%d diff=%d r2=%.4f", m.order, m.diff, m.fitR2)
}

var _ Model = (*ARIMAModel)(nil)
