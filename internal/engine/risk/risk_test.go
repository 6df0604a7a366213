package risk

import (
	"math"
	"testing"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

func defaults(t *testing.T) config.Risk {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg.Engine.Risk
}

func TestAssessInsufficientHistory(t *testing.T) {
	res := Assess([]float64{100}, defaults(t))
	if res.Level != models.RiskMedium {
		t.Fatalf("expected MEDIUM, got %s", res.Level)
	}
	if len(res.Factors) == 0 {
		t.Fatalf("expected explanatory factor")
	}
}

func TestAssessFlatSeriesIsLowRisk(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 100
	}
	res := Assess(closes, defaults(t))
	if res.Level != models.RiskLow {
		t.Fatalf("expected LOW on flat series, got %s", res.Level)
	}
	if res.VolatilityScore != 0 {
		t.Fatalf("expected zero volatility score, got %v", res.VolatilityScore)
	}
	if res.DrawdownPotential != 0 {
		t.Fatalf("expected zero drawdown, got %v", res.DrawdownPotential)
	}
}

func TestAssessCrashIsHighRisk(t *testing.T) {
	// steady climb then a 50% collapse
	closes := make([]float64, 0, 120)
	for i := 0; i < 100; i++ {
		closes = append(closes, 100+float64(i))
	}
	for i := 0; i < 20; i++ {
		closes = append(closes, 199*(1-0.035*float64(i+1)))
	}
	res := Assess(closes, defaults(t))
	if res.Level != models.RiskHigh {
		t.Fatalf("expected HIGH after collapse, got %s (vol %v dd %v)",
			res.Level, res.VolatilityScore, res.DrawdownPotential)
	}
	if res.DrawdownPotential < 40 {
		t.Fatalf("expected drawdown above 40%%, got %v", res.DrawdownPotential)
	}
	if len(res.Factors) == 0 {
		t.Fatalf("expected factors")
	}
}

func TestMaxDrawdownKnownShape(t *testing.T) {
	closes := []float64{100, 120, 90, 110, 80}
	dd := maxDrawdown(closes, 252)
	// peak 120, trough 80
	want := (120.0 - 80.0) / 120.0 * 100
	if math.Abs(dd-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, dd)
	}
}

func TestMaxDrawdownWindowed(t *testing.T) {
	// the crash sits outside the trailing window
	closes := []float64{100, 50, 100, 101, 102, 103}
	dd := maxDrawdown(closes, 4)
	if dd != 0 {
		t.Fatalf("expected 0 inside window, got %v", dd)
	}
}

func TestVolatilityScoreBounds(t *testing.T) {
	cfg := defaults(t)
	// violent alternation: +/-20% a day, far past the high reference
	closes := make([]float64, 60)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 0 {
			closes[i] = closes[i-1] * 1.2
		} else {
			closes[i] = closes[i-1] * 0.8
		}
	}
	score := volatilityScore(closes, cfg)
	if score != 100 {
		t.Fatalf("expected clamped 100, got %v", score)
	}
}
