package forecast

import (
	"fmt"
	"math"
	"math/rand"
)

// NeuralModel is a small feed-forward network trained on lagged daily
// returns: the input is the last `lags` returns, the target is the next
// one. Hidden layers use tanh, the output is linear, training is plain SGD
// in fixed sample order with seeded weight init, so a run is reproducible
// bit for bit. Confidence is the out-of-sample R-squared on a holdout tail,
// floored at zero.
type NeuralModel struct {
	lags    int
	hidden  []int
	epochs  int
	lr      float64
	seed    int64
	valFrac float64

	weights   [][][]float64 // [layer][neuron][input]
	biases    [][]float64
	returns   []float64
	lastPrice float64
	valR2     float64
	trained   bool
}

// daily return forecasts beyond this are treated as numerical noise
const maxDailyReturn = 0.2

// NewNeuralModel builds an unfitted network.
func NewNeuralModel(lags int, hidden []int, epochs int, lr float64, seed int64, valFrac float64) *NeuralModel {
	return &NeuralModel{lags: lags, hidden: hidden, epochs: epochs, lr: lr, seed: seed, valFrac: valFrac}
}

func (m *NeuralModel) Name() string { return "neural" }

func (m *NeuralModel) Fit(closes []float64) error {
	if len(closes) < m.lags+20 {
		return ErrInsufficientData
	}
	for _, c := range closes {
		if c <= 0 {
			return &FitError{Model: m.Name(), Reason: "non-positive price"}
		}
	}

	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = closes[i]/closes[i-1] - 1
	}

	var inputs [][]float64
	var targets []float64
	for t := m.lags; t < len(returns); t++ {
		inputs = append(inputs, returns[t-m.lags:t])
		targets = append(targets, returns[t])
	}
	if len(inputs) < 10 {
		return ErrInsufficientData
	}

	split := len(inputs) - int(float64(len(inputs))*m.valFrac)
	if split < 1 || split >= len(inputs) {
		split = len(inputs) - 1
	}
	trainIn, trainOut := inputs[:split], targets[:split]
	valIn, valOut := inputs[split:], targets[split:]

	m.initWeights()
	for epoch := 0; epoch < m.epochs; epoch++ {
		for i := range trainIn {
			m.sgdStep(trainIn[i], trainOut[i])
		}
	}

	var ssRes float64
	for i := range valIn {
		pred := m.forward(valIn[i])
		ssRes += (pred - valOut[i]) * (pred - valOut[i])
	}
	valVar := variance(valOut) * float64(len(valOut)-1)
	if valVar <= 0 || len(valOut) < 2 {
		m.valR2 = 0
	} else {
		m.valR2 = 1 - ssRes/valVar
		if m.valR2 < 0 {
			m.valR2 = 0
		}
	}

	m.returns = returns
	m.lastPrice = closes[len(closes)-1]
	m.trained = true
	return nil
}

func (m *NeuralModel) initWeights() {
	rng := rand.New(rand.NewSource(m.seed))
	sizes := append([]int{m.lags}, m.hidden...)
	sizes = append(sizes, 1)

	m.weights = make([][][]float64, len(sizes)-1)
	m.biases = make([][]float64, len(sizes)-1)
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		scale := math.Sqrt(2.0 / float64(in))
		m.weights[l] = make([][]float64, out)
		m.biases[l] = make([]float64, out)
		for j := 0; j < out; j++ {
			m.weights[l][j] = make([]float64, in)
			for k := 0; k < in; k++ {
				m.weights[l][j][k] = rng.NormFloat64() * scale
			}
		}
	}
}

func (m *NeuralModel) forward(input []float64) float64 {
	act := input
	for l := range m.weights {
		next := make([]float64, len(m.weights[l]))
		for j := range m.weights[l] {
			s := m.biases[l][j]
			for k, w := range m.weights[l][j] {
				s += w * act[k]
			}
			if l < len(m.weights)-1 {
				s = math.Tanh(s)
			}
			next[j] = s
		}
		act = next
	}
	return act[0]
}

// sgdStep runs one forward/backward pass and updates weights in place.
func (m *NeuralModel) sgdStep(input []float64, target float64) {
	layers := len(m.weights)
	acts := make([][]float64, layers+1)
	acts[0] = input
	pre := make([][]float64, layers)

	for l := 0; l < layers; l++ {
		out := make([]float64, len(m.weights[l]))
		z := make([]float64, len(m.weights[l]))
		for j := range m.weights[l] {
			s := m.biases[l][j]
			for k, w := range m.weights[l][j] {
				s += w * acts[l][k]
			}
			z[j] = s
			if l < layers-1 {
				s = math.Tanh(s)
			}
			out[j] = s
		}
		pre[l] = z
		acts[l+1] = out
	}

	// delta for the linear output under squared loss
	deltas := make([][]float64, layers)
	deltas[layers-1] = []float64{acts[layers][0] - target}

	for l := layers - 2; l >= 0; l-- {
		d := make([]float64, len(m.weights[l]))
		for j := range d {
			var s float64
			for i := range m.weights[l+1] {
				s += m.weights[l+1][i][j] * deltas[l+1][i]
			}
			th := math.Tanh(pre[l][j])
			d[j] = s * (1 - th*th)
		}
		deltas[l] = d
	}

	for l := 0; l < layers; l++ {
		for j := range m.weights[l] {
			for k := range m.weights[l][j] {
				m.weights[l][j][k] -= m.lr * deltas[l][j] * acts[l][k]
			}
			m.biases[l][j] -= m.lr * deltas[l][j]
		}
	}
}

func (m *NeuralModel) Predict(horizon int) (float64, float64, error) {
	if !m.trained {
		return 0, 0, &FitError{Model: m.Name(), Reason: "predict before fit"}
	}
	if horizon <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-positive horizon"}
	}

	window := append([]float64(nil), m.returns[len(m.returns)-m.lags:]...)
	price := m.lastPrice
	for h := 0; h < horizon; h++ {
		r := m.forward(window)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return 0, 0, &FitError{Model: m.Name(), Reason: "non-finite projection"}
		}
		if r > maxDailyReturn {
			r = maxDailyReturn
		}
		if r < -maxDailyReturn {
			r = -maxDailyReturn
		}
		price *= 1 + r
		window = append(window[1:], r)
	}
	if price <= 0 {
		return 0, 0, &FitError{Model: m.Name(), Reason: "non-positive projection"}
	}
	return price, clampConfidence(m.valR2 * 100), nil
}

func (m *NeuralModel) Features() string {
	return fmt.Sprintf("lags=%d hidden=%v epochs=%d lr=%g seed=%d val_r2=%.4f",
		m.lags, m.hidden, m.epochs, m.lr, m.seed, m.valR2)
}

var _ Model = (*NeuralModel)(nil)
