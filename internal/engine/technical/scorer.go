// Package technical turns an indicator snapshot into a 0-100 score.
//
// The scorer is a fixed rule set over nullable indicator values: each rule
// fires bullish, bearish, or neutral, carries a configured weight, and is
// skipped entirely when its inputs are nil. The score is
// 50 + 50*(bullish-bearish)/total over the weights of the rules that had
// inputs, clamped to [0,100]. With no usable indicators the score is a flat
// 50 with no signals.
package technical

import (
	"fmt"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

// Signal is one fired rule, kept for the report summary.
type Signal struct {
	Name      string           `json:"name"`
	Direction models.Direction `json:"direction"`
	Weight    float64          `json:"weight"`
	Detail    string           `json:"detail"`
}

// Result is the technical assessment for one snapshot.
type Result struct {
	Score   float64  `json:"score"`
	Signals []Signal `json:"signals"`
}

// Score evaluates the rule set against the snapshot. price is the latest
// close, used for the moving-average comparisons.
func Score(price float64, set *models.IndicatorSet, cfg config.Technical) Result {
	var (
		signals     []Signal
		bullish     float64
		bearish     float64
		totalWeight float64
	)

	add := func(name string, dir models.Direction, weight float64, detail string) {
		totalWeight += weight
		switch dir {
		case models.DirectionBullish:
			bullish += weight
		case models.DirectionBearish:
			bearish += weight
		}
		signals = append(signals, Signal{Name: name, Direction: dir, Weight: weight, Detail: detail})
	}

	if set.RSI != nil {
		v := *set.RSI
		switch {
		case v < cfg.RSIOversold:
			add("rsi", models.DirectionBullish, cfg.RSIWeight, fmt.Sprintf("RSI %.1f below %.0f (oversold)", v, cfg.RSIOversold))
		case v > cfg.RSIOverbought:
			add("rsi", models.DirectionBearish, cfg.RSIWeight, fmt.Sprintf("RSI %.1f above %.0f (overbought)", v, cfg.RSIOverbought))
		default:
			add("rsi", models.DirectionNeutral, cfg.RSIWeight, fmt.Sprintf("RSI %.1f in neutral range", v))
		}
	}

	if set.MACDHistogram != nil {
		v := *set.MACDHistogram
		switch {
		case v > 0:
			add("macd", models.DirectionBullish, cfg.MACDWeight, fmt.Sprintf("MACD histogram %.3f positive", v))
		case v < 0:
			add("macd", models.DirectionBearish, cfg.MACDWeight, fmt.Sprintf("MACD histogram %.3f negative", v))
		default:
			add("macd", models.DirectionNeutral, cfg.MACDWeight, "MACD histogram flat")
		}
	}

	maRule := func(name string, ma *float64, weight float64) {
		if ma == nil || price <= 0 {
			return
		}
		switch {
		case price > *ma:
			add(name, models.DirectionBullish, weight, fmt.Sprintf("price %.2f above %s %.2f", price, name, *ma))
		case price < *ma:
			add(name, models.DirectionBearish, weight, fmt.Sprintf("price %.2f below %s %.2f", price, name, *ma))
		default:
			add(name, models.DirectionNeutral, weight, fmt.Sprintf("price at %s", name))
		}
	}
	maRule("sma_20", set.SMA20, cfg.SMAShortWeight)
	maRule("sma_50", set.SMA50, cfg.SMAMediumWeight)
	maRule("sma_200", set.SMA200, cfg.SMALongWeight)

	// trend alignment: price > SMA(50) > SMA(200) (or the inverse) carries
	// the heaviest weight so a sustained trend dominates the overbought
	// oscillator readings it inevitably trips.
	if set.SMA50 != nil && set.SMA200 != nil && price > 0 {
		switch {
		case price > *set.SMA50 && *set.SMA50 > *set.SMA200:
			add("trend", models.DirectionBullish, cfg.TrendWeight,
				fmt.Sprintf("price %.2f > sma_50 %.2f > sma_200 %.2f", price, *set.SMA50, *set.SMA200))
		case price < *set.SMA50 && *set.SMA50 < *set.SMA200:
			add("trend", models.DirectionBearish, cfg.TrendWeight,
				fmt.Sprintf("price %.2f < sma_50 %.2f < sma_200 %.2f", price, *set.SMA50, *set.SMA200))
		default:
			add("trend", models.DirectionNeutral, cfg.TrendWeight, "moving averages not aligned")
		}
	}

	if set.BollingerUpper != nil && set.BollingerLower != nil && *set.BollingerUpper > *set.BollingerLower {
		pctB := (price - *set.BollingerLower) / (*set.BollingerUpper - *set.BollingerLower)
		switch {
		case pctB < cfg.BollingerLowBand:
			add("bollinger", models.DirectionBullish, cfg.BollingerWeight, fmt.Sprintf("price near lower band (%%B %.2f)", pctB))
		case pctB > cfg.BollingerHighBand:
			add("bollinger", models.DirectionBearish, cfg.BollingerWeight, fmt.Sprintf("price near upper band (%%B %.2f)", pctB))
		default:
			add("bollinger", models.DirectionNeutral, cfg.BollingerWeight, fmt.Sprintf("price mid-band (%%B %.2f)", pctB))
		}
	}

	if set.StochasticK != nil {
		v := *set.StochasticK
		switch {
		case v < cfg.StochOversold:
			add("stochastic", models.DirectionBullish, cfg.StochWeight, fmt.Sprintf("stochastic %%K %.1f oversold", v))
		case v > cfg.StochOverbought:
			add("stochastic", models.DirectionBearish, cfg.StochWeight, fmt.Sprintf("stochastic %%K %.1f overbought", v))
		default:
			add("stochastic", models.DirectionNeutral, cfg.StochWeight, fmt.Sprintf("stochastic %%K %.1f neutral", v))
		}
	}

	score := 50.0
	if totalWeight > 0 {
		score = 50 + 50*(bullish-bearish)/totalWeight
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{Score: score, Signals: signals}
}
