package technical

import (
	"math"
	"testing"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

func f(v float64) *float64 { return &v }

func defaults(t *testing.T) config.Technical {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg.Engine.Technical
}

func TestScoreNoIndicators(t *testing.T) {
	res := Score(100, &models.IndicatorSet{}, defaults(t))
	if res.Score != 50 {
		t.Fatalf("expected neutral 50, got %v", res.Score)
	}
	if len(res.Signals) != 0 {
		t.Fatalf("expected no signals, got %d", len(res.Signals))
	}
}

func TestScoreAllBullish(t *testing.T) {
	set := &models.IndicatorSet{
		RSI:            f(20),
		MACDHistogram:  f(1.5),
		SMA20:          f(90),
		SMA50:          f(85),
		SMA200:         f(80),
		BollingerUpper: f(120),
		BollingerLower: f(95),
		StochasticK:    f(10),
	}
	res := Score(96, set, defaults(t))
	if res.Score != 100 {
		t.Fatalf("expected 100 when every rule is bullish, got %v", res.Score)
	}
	for _, s := range res.Signals {
		if s.Direction != models.DirectionBullish {
			t.Fatalf("signal %s unexpectedly %s", s.Name, s.Direction)
		}
	}
}

func TestScoreAllBearish(t *testing.T) {
	set := &models.IndicatorSet{
		RSI:            f(85),
		MACDHistogram:  f(-0.8),
		SMA20:          f(110),
		SMA50:          f(115),
		SMA200:         f(120),
		BollingerUpper: f(105),
		BollingerLower: f(80),
		StochasticK:    f(95),
	}
	res := Score(104, set, defaults(t))
	if res.Score != 0 {
		t.Fatalf("expected 0 when every rule is bearish, got %v", res.Score)
	}
}

func TestScoreNeutralRulesPullToFifty(t *testing.T) {
	// one bullish rule, one neutral rule of equal weight: score above 50
	// but below the single-rule extreme
	cfg := defaults(t)
	cfg.RSIWeight = 1
	cfg.MACDWeight = 1
	set := &models.IndicatorSet{
		RSI:           f(55), // neutral
		MACDHistogram: f(2),  // bullish
	}
	res := Score(100, set, cfg)
	if !(res.Score > 50 && res.Score < 100) {
		t.Fatalf("expected score strictly between 50 and 100, got %v", res.Score)
	}
	if math.Abs(res.Score-75) > 1e-9 {
		t.Fatalf("expected 75, got %v", res.Score)
	}
}

func TestScoreTrendAlignmentDominates(t *testing.T) {
	// sustained uptrend: RSI, bollinger, and stochastic all read overbought,
	// but the aligned moving averages keep the score well above neutral
	set := &models.IndicatorSet{
		RSI:            f(100),
		MACDHistogram:  f(0.9),
		SMA20:          f(146.8),
		SMA50:          f(143.8),
		SMA200:         f(128.7),
		BollingerUpper: f(150.5),
		BollingerLower: f(145.7),
		StochasticK:    f(95),
	}
	res := Score(150, set, defaults(t))
	if res.Score <= 70 {
		t.Fatalf("expected trending score above 70, got %v", res.Score)
	}
	var trend *Signal
	for i := range res.Signals {
		if res.Signals[i].Name == "trend" {
			trend = &res.Signals[i]
		}
	}
	if trend == nil {
		t.Fatalf("expected trend signal")
	}
	if trend.Direction != models.DirectionBullish {
		t.Fatalf("expected bullish trend signal, got %s", trend.Direction)
	}
}

func TestScoreTrendNotAlignedNeutral(t *testing.T) {
	// price below SMA50 but SMA50 above SMA200: no alignment either way
	set := &models.IndicatorSet{
		SMA50:  f(105),
		SMA200: f(95),
	}
	res := Score(100, set, defaults(t))
	for _, s := range res.Signals {
		if s.Name == "trend" && s.Direction != models.DirectionNeutral {
			t.Fatalf("expected neutral trend signal, got %s", s.Direction)
		}
	}
}

func TestScoreSkipsNilInputs(t *testing.T) {
	set := &models.IndicatorSet{MACDHistogram: f(1)}
	res := Score(100, set, defaults(t))
	if res.Score != 100 {
		t.Fatalf("expected 100 from lone bullish rule, got %v", res.Score)
	}
	if len(res.Signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(res.Signals))
	}
}

func TestScoreCollapsedBandsSkipped(t *testing.T) {
	set := &models.IndicatorSet{
		BollingerUpper: f(100),
		BollingerLower: f(100),
	}
	res := Score(100, set, defaults(t))
	if len(res.Signals) != 0 {
		t.Fatalf("expected collapsed bands to be skipped, got %d signals", len(res.Signals))
	}
}

func TestScoreDeterministic(t *testing.T) {
	set := &models.IndicatorSet{
		RSI:           f(72),
		MACDHistogram: f(0.4),
		SMA20:         f(99),
		StochasticK:   f(50),
	}
	first := Score(100, set, defaults(t))
	for i := 0; i < 5; i++ {
		again := Score(100, set, defaults(t))
		if again.Score != first.Score || len(again.Signals) != len(first.Signals) {
			t.Fatalf("non-deterministic score")
		}
	}
}
