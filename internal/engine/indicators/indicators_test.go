package indicators

import (
	"math"
	"testing"
	"time"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/config"
)

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMARamp(t *testing.T) {
	values := ramp(30, 1, 1)
	out := SMA(values, 5)
	for i := 0; i < 4; i++ {
		if !math.IsNaN(out[i]) {
			t.Fatalf("expected NaN at %d, got %v", i, out[i])
		}
	}
	// values 26..30, mean 28
	if !almostEqual(out[29], 28) {
		t.Fatalf("expected 28, got %v", out[29])
	}
	// first defined value: mean of 1..5
	if !almostEqual(out[4], 3) {
		t.Fatalf("expected 3, got %v", out[4])
	}
}

func TestSMAInsufficient(t *testing.T) {
	out := SMA(ramp(3, 1, 1), 5)
	for i, v := range out {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN at %d, got %v", i, v)
		}
	}
}

func TestEMAConstant(t *testing.T) {
	out := EMA(constant(50, 42), 12)
	if !almostEqual(out[49], 42) {
		t.Fatalf("expected 42, got %v", out[49])
	}
	if !math.IsNaN(out[10]) {
		t.Fatalf("expected NaN before seed, got %v", out[10])
	}
}

func TestEMASeededWithSMA(t *testing.T) {
	values := ramp(10, 1, 1)
	out := EMA(values, 5)
	// seed at index 4 is SMA(1..5) = 3
	if !almostEqual(out[4], 3) {
		t.Fatalf("expected seed 3, got %v", out[4])
	}
	// next: alpha=1/3, 6/3 + 3*2/3 = 4
	if !almostEqual(out[5], 4) {
		t.Fatalf("expected 4, got %v", out[5])
	}
}

func TestEMASkipsLeadingNaN(t *testing.T) {
	values := ramp(20, 1, 1)
	for i := 0; i < 5; i++ {
		values[i] = math.NaN()
	}
	out := EMA(values, 5)
	if !math.IsNaN(out[8]) {
		t.Fatalf("expected NaN before seed, got %v", out[8])
	}
	// seed at index 9: SMA of values 6..10 = 8
	if !almostEqual(out[9], 8) {
		t.Fatalf("expected seed 8, got %v", out[9])
	}
}

func TestMACDConstant(t *testing.T) {
	line, sig, hist := MACD(constant(100, 55), 12, 26, 9)
	if !almostEqual(line[99], 0) || !almostEqual(sig[99], 0) || !almostEqual(hist[99], 0) {
		t.Fatalf("expected zero MACD on constant series, got %v %v %v", line[99], sig[99], hist[99])
	}
}

func TestMACDSignalNeedsWarmup(t *testing.T) {
	// MACD line defined from index 25, signal from 25+9-1=33
	_, sig, _ := MACD(ramp(100, 100, 0.5), 12, 26, 9)
	if !math.IsNaN(sig[32]) {
		t.Fatalf("expected NaN at 32, got %v", sig[32])
	}
	if math.IsNaN(sig[33]) {
		t.Fatalf("expected signal defined at 33")
	}
}

func TestRSIAllGains(t *testing.T) {
	out := RSI(ramp(30, 100, 1), 14)
	if !almostEqual(out[29], 100) {
		t.Fatalf("expected 100, got %v", out[29])
	}
	if !math.IsNaN(out[13]) {
		t.Fatalf("expected NaN before first change window")
	}
}

func TestRSIAllLosses(t *testing.T) {
	out := RSI(ramp(30, 100, -1), 14)
	if !almostEqual(out[29], 0) {
		t.Fatalf("expected 0, got %v", out[29])
	}
}

func TestRSIFlat(t *testing.T) {
	out := RSI(constant(30, 100), 14)
	if !almostEqual(out[29], 50) {
		t.Fatalf("expected 50 on flat series, got %v", out[29])
	}
}

func TestStochasticCloseAtHigh(t *testing.T) {
	n := 20
	closes := ramp(n, 10, 1)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range closes {
		highs[i] = closes[i]
		lows[i] = closes[i] - 2
	}
	k, _ := Stochastic(highs, lows, closes, 14, 3)
	if math.IsNaN(k[n-1]) {
		t.Fatalf("expected %%K defined")
	}
	if !almostEqual(k[n-1], 100) {
		t.Fatalf("expected 100 when close sits at window high, got %v", k[n-1])
	}
}

func TestStochasticFlatWindow(t *testing.T) {
	k, d := Stochastic(constant(20, 5), constant(20, 5), constant(20, 5), 14, 3)
	if !math.IsNaN(k[19]) || !math.IsNaN(d[19]) {
		t.Fatalf("expected NaN on flat high/low range, got %v %v", k[19], d[19])
	}
}

func TestWilliamsRBounds(t *testing.T) {
	n := 20
	closes := ramp(n, 10, 1)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i := range closes {
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
	}
	out := WilliamsR(highs, lows, closes, 14)
	v := out[n-1]
	if math.IsNaN(v) || v > 0 || v < -100 {
		t.Fatalf("expected value in [-100,0], got %v", v)
	}
}

func TestBollingerConstant(t *testing.T) {
	upper, middle, lower := Bollinger(constant(30, 50), 20, 2)
	if !almostEqual(upper[29], 50) || !almostEqual(middle[29], 50) || !almostEqual(lower[29], 50) {
		t.Fatalf("expected collapsed bands at 50, got %v %v %v", upper[29], middle[29], lower[29])
	}
}

func TestBollingerSymmetry(t *testing.T) {
	upper, middle, lower := Bollinger(ramp(40, 100, 1), 20, 2)
	i := 39
	if !almostEqual(upper[i]-middle[i], middle[i]-lower[i]) {
		t.Fatalf("expected symmetric bands, got %v %v %v", upper[i], middle[i], lower[i])
	}
	if upper[i] <= middle[i] {
		t.Fatalf("expected upper above middle")
	}
}

func TestATRConstantRange(t *testing.T) {
	n := 30
	highs := constant(n, 12)
	lows := constant(n, 10)
	closes := constant(n, 11)
	out := ATR(highs, lows, closes, 14)
	// every true range is 2
	if !almostEqual(out[n-1], 2) {
		t.Fatalf("expected ATR 2, got %v", out[n-1])
	}
	if !math.IsNaN(out[12]) {
		t.Fatalf("expected NaN before seed")
	}
}

func TestOBV(t *testing.T) {
	closes := []float64{10, 11, 11, 9, 12}
	volumes := []float64{100, 200, 300, 400, 500}
	out := OBV(closes, volumes)
	want := []float64{0, 200, 200, -200, 300}
	for i := range want {
		if !almostEqual(out[i], want[i]) {
			t.Fatalf("obv[%d]: expected %v, got %v", i, want[i], out[i])
		}
	}
}

func TestSupportResistance(t *testing.T) {
	highs := []float64{10, 12, 11, 15, 13}
	lows := []float64{8, 9, 7, 10, 11}
	support, resistance := SupportResistance(highs, lows, 3)
	if !almostEqual(resistance[4], 15) {
		t.Fatalf("expected resistance 15, got %v", resistance[4])
	}
	if !almostEqual(support[4], 7) {
		t.Fatalf("expected support 7, got %v", support[4])
	}
	if !math.IsNaN(support[1]) {
		t.Fatalf("expected NaN before window fills")
	}
}

func testSeries(n int) *models.PriceSeries {
	points := make([]models.PricePoint, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range points {
		c := 100 + float64(i)*0.25
		points[i] = models.PricePoint{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c - 0.1,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000 + float64(i),
		}
	}
	return &models.PriceSeries{Symbol: "TEST", Points: points}
}

func engineDefaults(t *testing.T) config.Indicators {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg.Engine.Indicators
}

func TestComputeFullHistory(t *testing.T) {
	set := Compute(testSeries(250), engineDefaults(t))
	if set.Symbol != "TEST" {
		t.Fatalf("unexpected symbol %q", set.Symbol)
	}
	if set.SMA20 == nil || set.SMA50 == nil || set.SMA200 == nil {
		t.Fatalf("expected all SMAs defined on 250 points")
	}
	if set.RSI == nil || *set.RSI != 100 {
		t.Fatalf("expected RSI 100 on monotone ramp, got %v", set.RSI)
	}
	if set.MACD == nil || set.MACDSignal == nil || set.MACDHistogram == nil {
		t.Fatalf("expected MACD defined")
	}
	if set.SupportLevel == nil || set.ResistanceLevel == nil {
		t.Fatalf("expected support/resistance defined")
	}
	if *set.SupportLevel >= *set.ResistanceLevel {
		t.Fatalf("support %v not below resistance %v", *set.SupportLevel, *set.ResistanceLevel)
	}
}

func TestComputeShortHistory(t *testing.T) {
	set := Compute(testSeries(30), engineDefaults(t))
	if set.SMA20 == nil {
		t.Fatalf("expected SMA20 defined on 30 points")
	}
	if set.SMA50 != nil || set.SMA200 != nil {
		t.Fatalf("expected long SMAs nil on 30 points")
	}
	if set.MACDSignal != nil {
		t.Fatalf("expected MACD signal nil before warmup")
	}
}

func TestComputeEmptySeries(t *testing.T) {
	set := Compute(&models.PriceSeries{Symbol: "EMPTY"}, engineDefaults(t))
	if set.SMA20 != nil || set.RSI != nil || set.OBV != nil {
		t.Fatalf("expected all-nil snapshot on empty series")
	}
}
