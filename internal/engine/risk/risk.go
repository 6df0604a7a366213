// Package risk assesses downside exposure from price history alone:
// annualized volatility of recent daily returns mapped onto a 0-100 score,
// and the worst peak-to-trough drawdown over the lookback. The level
// bucketing is threshold-based and configured, not learned.
package risk

import (
	"fmt"
	"math"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

// trading days per year, used to annualize daily return volatility
const annualizationFactor = 252

// Assess computes the risk assessment for a close-price history. With fewer
// than two points there is nothing to measure and the assessment degrades to
// MEDIUM with zeroed metrics and an explanatory factor.
func Assess(closes []float64, cfg config.Risk) models.RiskAssessment {
	if len(closes) < 2 {
		return models.RiskAssessment{
			Level:   models.RiskMedium,
			Factors: []string{"insufficient history for risk metrics"},
		}
	}

	volScore := volatilityScore(closes, cfg)
	drawdown := maxDrawdown(closes, cfg.DrawdownWindow)

	var factors []string
	level := models.RiskMedium
	switch {
	case volScore > cfg.VolHigh || drawdown > cfg.DrawdownHigh:
		level = models.RiskHigh
		if volScore > cfg.VolHigh {
			factors = append(factors, fmt.Sprintf("volatility score %.0f above %.0f", volScore, cfg.VolHigh))
		}
		if drawdown > cfg.DrawdownHigh {
			factors = append(factors, fmt.Sprintf("max drawdown %.1f%% above %.0f%%", drawdown, cfg.DrawdownHigh))
		}
	case volScore < cfg.VolLow && drawdown < cfg.DrawdownLow:
		level = models.RiskLow
		factors = append(factors, "volatility and drawdown both subdued")
	default:
		factors = append(factors, fmt.Sprintf("volatility score %.0f, max drawdown %.1f%%", volScore, drawdown))
	}

	return models.RiskAssessment{
		Level:             level,
		VolatilityScore:   volScore,
		DrawdownPotential: drawdown,
		Factors:           factors,
	}
}

// volatilityScore annualizes the standard deviation of daily returns over
// the configured window and maps it linearly from [RefVolLow, RefVolHigh]
// onto [0, 100], clamped at both ends.
func volatilityScore(closes []float64, cfg config.Risk) float64 {
	window := cfg.VolatilityWindow
	if len(closes)-1 < window {
		window = len(closes) - 1
	}

	returns := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] <= 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}

	m := 0.0
	for _, r := range returns {
		m += r
	}
	m /= float64(len(returns))
	var ss float64
	for _, r := range returns {
		ss += (r - m) * (r - m)
	}
	daily := math.Sqrt(ss / float64(len(returns)-1))
	annual := daily * math.Sqrt(annualizationFactor)

	score := (annual - cfg.RefVolLow) / (cfg.RefVolHigh - cfg.RefVolLow) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// maxDrawdown returns the largest peak-to-trough decline over the trailing
// window, as a positive percentage.
func maxDrawdown(closes []float64, window int) float64 {
	start := 0
	if len(closes) > window {
		start = len(closes) - window
	}

	peak := closes[start]
	var worst float64
	for _, c := range closes[start:] {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := (peak - c) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
