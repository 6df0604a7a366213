package fundamental

import (
	"math"
	"testing"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

func f(v float64) *float64 { return &v }

func defaults(t *testing.T) config.Fundamental {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg.Engine.Fundamental
}

func TestScoreNilSnapshot(t *testing.T) {
	res := Score(nil, defaults(t))
	if res.Composite != nil {
		t.Fatalf("expected nil composite, got %v", *res.Composite)
	}
	if len(res.Notes) == 0 {
		t.Fatalf("expected a note on missing data")
	}
}

func TestScoreEmptySnapshot(t *testing.T) {
	res := Score(&models.FundamentalSnapshot{Symbol: "X"}, defaults(t))
	if res.Composite != nil {
		t.Fatalf("expected nil composite on empty snapshot")
	}
	if res.Categories.Valuation != nil || res.Categories.Health != nil ||
		res.Categories.Growth != nil || res.Categories.Profitability != nil {
		t.Fatalf("expected all categories nil")
	}
}

func TestScoreStrongCompany(t *testing.T) {
	snap := &models.FundamentalSnapshot{
		Symbol:         "STRONG",
		PERatio:        f(12),
		PBRatio:        f(0.8),
		EVEBITDA:       f(8),
		CurrentRatio:   f(2.5),
		QuickRatio:     f(1.5),
		DebtToEquity:   f(0.3),
		RevenueGrowth:  f(25),
		EarningsGrowth: f(30),
		ROE:            f(25),
		ROA:            f(12),
		ProfitMargin:   f(22),
	}
	res := Score(snap, defaults(t))
	if res.Composite == nil {
		t.Fatalf("expected composite")
	}
	if *res.Composite <= 70 {
		t.Fatalf("expected strong composite above 70, got %v", *res.Composite)
	}
	for name, c := range map[string]*float64{
		"valuation":     res.Categories.Valuation,
		"health":        res.Categories.Health,
		"growth":        res.Categories.Growth,
		"profitability": res.Categories.Profitability,
	} {
		if c == nil {
			t.Fatalf("category %s unexpectedly nil", name)
		}
		if *c <= 50 {
			t.Fatalf("category %s expected above baseline, got %v", name, *c)
		}
	}
}

func TestScoreWeakCompany(t *testing.T) {
	snap := &models.FundamentalSnapshot{
		Symbol:         "WEAK",
		PERatio:        f(45),
		PBRatio:        f(6),
		CurrentRatio:   f(0.6),
		DebtToEquity:   f(3.5),
		RevenueGrowth:  f(-12),
		EarningsGrowth: f(-20),
		ROE:            f(2),
		ProfitMargin:   f(-5),
	}
	res := Score(snap, defaults(t))
	if res.Composite == nil {
		t.Fatalf("expected composite")
	}
	if *res.Composite >= 40 {
		t.Fatalf("expected weak composite below 40, got %v", *res.Composite)
	}
	if len(res.Notes) == 0 {
		t.Fatalf("expected warning notes")
	}
}

func TestScorePartialCategories(t *testing.T) {
	// only growth data: composite must equal the growth category alone
	snap := &models.FundamentalSnapshot{
		Symbol:        "PARTIAL",
		RevenueGrowth: f(25),
	}
	res := Score(snap, defaults(t))
	if res.Categories.Growth == nil {
		t.Fatalf("expected growth category")
	}
	if res.Categories.Valuation != nil {
		t.Fatalf("expected valuation nil")
	}
	if res.Composite == nil || *res.Composite != *res.Categories.Growth {
		t.Fatalf("composite should equal lone category")
	}
	if *res.Composite != 70 {
		t.Fatalf("expected 50+20=70, got %v", *res.Composite)
	}
}

func TestScoreClampedToRange(t *testing.T) {
	snap := &models.FundamentalSnapshot{
		Symbol:         "G",
		RevenueGrowth:  f(80),
		EarningsGrowth: f(90),
	}
	res := Score(snap, defaults(t))
	if res.Categories.Growth == nil {
		t.Fatalf("expected growth category")
	}
	if *res.Categories.Growth > 100 || *res.Categories.Growth < 0 {
		t.Fatalf("category out of range: %v", *res.Categories.Growth)
	}
	// 50+20+20 = 90, inside range so unclamped
	if math.Abs(*res.Categories.Growth-90) > 1e-9 {
		t.Fatalf("expected 90, got %v", *res.Categories.Growth)
	}
}

func TestScoreNegativePE(t *testing.T) {
	snap := &models.FundamentalSnapshot{Symbol: "LOSS", PERatio: f(-8)}
	res := Score(snap, defaults(t))
	if res.Categories.Valuation == nil {
		t.Fatalf("expected valuation category")
	}
	if *res.Categories.Valuation != 40 {
		t.Fatalf("expected 40 for negative P/E, got %v", *res.Categories.Valuation)
	}
}
