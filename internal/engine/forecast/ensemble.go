package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
	"EquityLens/pkg/logger"
)

// Ensemble fits the configured models in parallel and fuses their forecasts.
//
// Fusion rules: direction is a majority vote over the models that produced
// a forecast, ties resolved to neutral; confidence is the confidence-weighted
// mean of model confidences; a model that fails or times out is excluded and
// noted rather than failing the run. A history shorter than MinHistory skips
// the models entirely and returns a neutral zero-confidence result flagged
// insufficient_data.
type Ensemble struct {
	cfg config.Ensemble
	log *logger.Logger
}

func NewEnsemble(cfg config.Ensemble, log *logger.Logger) *Ensemble {
	return &Ensemble{cfg: cfg, log: log}
}

// newModels builds fresh model instances. Each run gets its own set so a
// fitted model is never shared across goroutines or calls.
func (e *Ensemble) newModels() []Model {
	n := e.cfg.Neural
	return []Model{
		NewLinearModel(e.cfg.Linear.LogPrice),
		NewARIMAModel(e.cfg.ARIMA.MaxOrder, e.cfg.ARIMA.Diff),
		NewNeuralModel(n.Lags, n.Hidden, n.Epochs, n.LearningRate, n.Seed, n.ValidationSplit),
	}
}

type modelOutcome struct {
	prediction *models.Prediction
	degraded   string
}

// Run produces the fused forecast for one horizon.
func (e *Ensemble) Run(ctx context.Context, symbol string, closes []float64, horizon int, now time.Time) *models.EnsembleResult {
	result := &models.EnsembleResult{
		Symbol:      symbol,
		HorizonDays: horizon,
		Direction:   models.DirectionNeutral,
	}

	if len(closes) < e.cfg.MinHistory {
		e.log.Warn("forecast skipped: history below minimum",
			logger.String("symbol", symbol),
			logger.Int("points", len(closes)),
			logger.Int("min", e.cfg.MinHistory))
		result.InsufficientData = true
		return result
	}

	train := closes
	if len(train) > e.cfg.TrainWindow {
		train = train[len(train)-e.cfg.TrainWindow:]
	}
	current := closes[len(closes)-1]

	mods := e.newModels()
	type slotOutcome struct {
		slot    int
		outcome modelOutcome
	}
	done := make(chan slotOutcome, len(mods))

	for i, m := range mods {
		go func(slot int, m Model) {
			done <- slotOutcome{slot: slot, outcome: e.runModel(m, symbol, train, current, horizon, now)}
		}(i, m)
	}

	timer := time.NewTimer(e.cfg.ModelTimeout)
	defer timer.Stop()
	outcomes := make([]modelOutcome, len(mods))
	finished := make([]bool, len(mods))
	remaining := len(mods)

collect:
	for remaining > 0 {
		select {
		case so := <-done:
			outcomes[so.slot] = so.outcome
			finished[so.slot] = true
			remaining--
		case <-timer.C:
			break collect
		case <-ctx.Done():
			break collect
		}
	}

	for i, m := range mods {
		if !finished[i] {
			outcomes[i] = modelOutcome{degraded: fmt.Sprintf("%s: timeout after %s", m.Name(), e.cfg.ModelTimeout)}
			e.log.Warn("forecast model timed out",
				logger.String("symbol", symbol),
				logger.String("model", m.Name()))
		}
	}

	var votes = map[models.Direction]int{}
	var sumConf, sumConfSq, sumWeightedChange float64
	for _, o := range outcomes {
		if o.degraded != "" {
			result.DegradedModels = append(result.DegradedModels, o.degraded)
			continue
		}
		p := o.prediction
		result.Predictions = append(result.Predictions, *p)
		votes[p.Direction]++
		sumConf += p.Confidence
		sumConfSq += p.Confidence * p.Confidence
		sumWeightedChange += p.Confidence * p.PredictedChange
	}
	sort.Strings(result.DegradedModels)

	if len(result.Predictions) == 0 {
		result.InsufficientData = true
		return result
	}

	result.Direction = majority(votes)
	if sumConf > 0 {
		result.Confidence = sumConfSq / sumConf
		result.AvgChange = sumWeightedChange / sumConf
	} else {
		var s float64
		for _, p := range result.Predictions {
			s += p.PredictedChange
		}
		result.AvgChange = s / float64(len(result.Predictions))
	}
	return result
}

// RunAll produces a result per configured horizon, in ascending order.
func (e *Ensemble) RunAll(ctx context.Context, symbol string, closes []float64, now time.Time) []*models.EnsembleResult {
	horizons := append([]int(nil), e.cfg.Horizons...)
	sort.Ints(horizons)
	out := make([]*models.EnsembleResult, 0, len(horizons))
	for _, h := range horizons {
		out = append(out, e.Run(ctx, symbol, closes, h, now))
	}
	return out
}

func (e *Ensemble) runModel(m Model, symbol string, train []float64, current float64, horizon int, now time.Time) modelOutcome {
	if err := m.Fit(train); err != nil {
		return modelOutcome{degraded: fmt.Sprintf("%s: %v", m.Name(), err)}
	}
	price, conf, err := m.Predict(horizon)
	if err != nil {
		return modelOutcome{degraded: fmt.Sprintf("%s: %v", m.Name(), err)}
	}

	change := 0.0
	if current > 0 {
		change = (price - current) / current * 100
	}
	return modelOutcome{prediction: &models.Prediction{
		Symbol:          symbol,
		Model:           m.Name(),
		GeneratedAt:     now,
		HorizonDays:     horizon,
		CurrentPrice:    current,
		PredictedPrice:  price,
		PredictedChange: change,
		Direction:       e.direction(change),
		Confidence:      conf,
		Features:        m.Features(),
	}}
}

// direction maps a percent change to a stance using the configured
// threshold (a fraction, e.g. 0.02 for 2%).
func (e *Ensemble) direction(changePct float64) models.Direction {
	limit := e.cfg.DirectionThreshold * 100
	switch {
	case changePct > limit:
		return models.DirectionBullish
	case changePct < -limit:
		return models.DirectionBearish
	default:
		return models.DirectionNeutral
	}
}

func majority(votes map[models.Direction]int) models.Direction {
	best := models.DirectionNeutral
	bestN := 0
	tied := false
	for _, d := range []models.Direction{models.DirectionBullish, models.DirectionBearish, models.DirectionNeutral} {
		n := votes[d]
		if n > bestN {
			best, bestN, tied = d, n, false
		} else if n == bestN && n > 0 && d != best {
			tied = true
		}
	}
	if tied {
		return models.DirectionNeutral
	}
	return best
}
