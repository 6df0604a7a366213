// Package engine wires the indicator, scoring, forecast, and risk components
// into one analysis pipeline and synthesizes the final report.
//
// The blend is a weighted mean over the components that produced a score:
// technical always does, fundamental drops out when no ratios exist, and the
// prediction component drops out when history is too short. Weights
// renormalize over whatever remains, so a missing component redistributes
// its influence instead of silently dragging the result toward zero.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/engine/forecast"
	"EquityLens/internal/engine/fundamental"
	"EquityLens/internal/engine/indicators"
	"EquityLens/internal/engine/risk"
	"EquityLens/internal/engine/technical"
	"EquityLens/pkg/config"
	"EquityLens/pkg/logger"
)

type Engine struct {
	cfg      config.Engine
	log      *logger.Logger
	ensemble *forecast.Ensemble
}

// New validates the configuration and builds the engine. A bad configuration
// is fatal here; nothing downstream re-checks it.
func New(cfg config.Engine, log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		log:      log,
		ensemble: forecast.NewEnsemble(cfg.Ensemble, log),
	}, nil
}

// Indicators computes the indicator snapshot for a validated series.
func (e *Engine) Indicators(series *models.PriceSeries) (*models.IndicatorSet, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("empty price series for %s", series.Symbol)
	}
	return indicators.Compute(series, e.cfg.Indicators), nil
}

// Predict runs the forecast ensemble for one horizon.
func (e *Engine) Predict(ctx context.Context, series *models.PriceSeries, horizon int) (*models.EnsembleResult, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("empty price series for %s", series.Symbol)
	}
	return e.ensemble.Run(ctx, series.Symbol, series.Closes(), horizon, time.Now().UTC()), nil
}

// PredictAll runs the forecast ensemble for every configured horizon.
func (e *Engine) PredictAll(ctx context.Context, series *models.PriceSeries) ([]*models.EnsembleResult, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("empty price series for %s", series.Symbol)
	}
	return e.ensemble.RunAll(ctx, series.Symbol, series.Closes(), time.Now().UTC()), nil
}

// Analyze runs the whole pipeline for one instrument. The fundamental
// snapshot may be nil; the report then carries a nil fundamental score. A
// malformed series is the one fatal input error.
func (e *Engine) Analyze(ctx context.Context, series *models.PriceSeries, fund *models.FundamentalSnapshot, now time.Time) (*models.AnalysisReport, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("empty price series for %s", series.Symbol)
	}

	started := time.Now()
	symbol := series.Symbol
	closes := series.Closes()
	current := series.LastClose()

	set := indicators.Compute(series, e.cfg.Indicators)
	techRes := technical.Score(current, set, e.cfg.Technical)
	fundRes := fundamental.Score(fund, e.cfg.Fundamental)
	horizon := reportHorizon(e.cfg.Ensemble.Horizons)
	ensRes := e.ensemble.Run(ctx, symbol, closes, horizon, now)
	riskRes := risk.Assess(closes, e.cfg.Risk)

	overall, predScore := e.blend(techRes.Score, fundRes.Composite, ensRes)
	rec := e.recommend(overall)
	conf := e.confidence(overall)

	report := &models.AnalysisReport{
		Symbol:                   symbol,
		ReportDate:               now,
		CurrentPrice:             current,
		TechnicalScore:           techRes.Score,
		FundamentalScore:         fundRes.Composite,
		OverallScore:             overall,
		Recommendation:           rec,
		RecommendationConfidence: conf,
		Risk:                     riskRes,
		Indicators:               set,
		Fundamentals:             fund,
		Ensemble:                 ensRes,
	}
	report.Summaries = models.Summaries{
		Technical:   technicalSummary(techRes),
		Fundamental: fundamentalSummary(fundRes),
		Prediction:  predictionSummary(ensRes),
		Overall:     overallSummary(report, predScore),
	}

	e.log.Info("analysis complete",
		logger.String("symbol", symbol),
		logger.Float64("overall", overall),
		logger.String("recommendation", string(rec)),
		logger.String("risk", string(riskRes.Level)),
		logger.Duration("elapsed", time.Since(started)))
	return report, nil
}

// blend combines the component scores. The prediction component maps the
// ensemble onto the 0-100 scale as 50 plus half its confidence, signed by
// direction, and is absent when the ensemble had no data.
func (e *Engine) blend(tech float64, fundComposite *float64, ens *models.EnsembleResult) (overall float64, predScore *float64) {
	w := e.cfg.Recommendation

	if ens != nil && !ens.InsufficientData {
		s := 50.0
		switch ens.Direction {
		case models.DirectionBullish:
			s += ens.Confidence / 2
		case models.DirectionBearish:
			s -= ens.Confidence / 2
		}
		predScore = &s
	}

	sum := tech * w.TechnicalWeight
	weight := w.TechnicalWeight
	if fundComposite != nil {
		sum += *fundComposite * w.FundamentalWeight
		weight += w.FundamentalWeight
	}
	if predScore != nil {
		sum += *predScore * w.PredictionWeight
		weight += w.PredictionWeight
	}
	if weight <= 0 {
		return 50, predScore
	}

	overall = sum / weight
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	return overall, predScore
}

func (e *Engine) recommend(overall float64) models.Recommendation {
	switch {
	case overall >= e.cfg.Recommendation.BuyThreshold:
		return models.RecommendationBuy
	case overall <= e.cfg.Recommendation.SellThreshold:
		return models.RecommendationSell
	default:
		return models.RecommendationHold
	}
}

// confidence grows with the distance from the nearest decision boundary and
// caps at 100. A score sitting on a threshold is a coin flip, so the floor
// is 50.
func (e *Engine) confidence(overall float64) float64 {
	r := e.cfg.Recommendation
	d := math.Min(math.Abs(overall-r.BuyThreshold), math.Abs(overall-r.SellThreshold))
	c := 50 + d*r.ConfidenceSlope
	if c > 100 {
		return 100
	}
	return c
}

// reportHorizon picks the longest configured horizon for the headline
// report; shorter horizons stay available through PredictAll.
func reportHorizon(horizons []int) int {
	best := 0
	for _, h := range horizons {
		if h > best {
			best = h
		}
	}
	if best == 0 {
		best = 7
	}
	return best
}
