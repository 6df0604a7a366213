package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/engine"
	"EquityLens/pkg/cache"
	"EquityLens/pkg/config"
	"EquityLens/pkg/logger"
)

type fakePriceStore struct {
	series map[string]*models.PriceSeries
	err    error
}

func (f *fakePriceStore) Init(context.Context) error                        { return nil }
func (f *fakePriceStore) StoreBars(context.Context, []*models.Bar) error    { return nil }
func (f *fakePriceStore) Health(context.Context) error                      { return nil }
func (f *fakePriceStore) Close() error                                      { return nil }
func (f *fakePriceStore) GetSeries(_ context.Context, symbol string, _, _ time.Time) (*models.PriceSeries, error) {
	return f.series[symbol], f.err
}
func (f *fakePriceStore) GetLatestSeries(_ context.Context, symbol string, _ int) (*models.PriceSeries, error) {
	return f.series[symbol], f.err
}

type fakeFundamentalStore struct {
	snap *models.FundamentalSnapshot
	err  error
}

func (f *fakeFundamentalStore) StoreSnapshot(context.Context, *models.FundamentalSnapshot) error {
	return nil
}
func (f *fakeFundamentalStore) GetLatestSnapshot(context.Context, string) (*models.FundamentalSnapshot, error) {
	return f.snap, f.err
}

type fakeReportStore struct {
	stored []*models.AnalysisReport
	err    error
}

func (f *fakeReportStore) StoreReport(_ context.Context, r *models.AnalysisReport) error {
	f.stored = append(f.stored, r)
	return f.err
}
func (f *fakeReportStore) GetReport(context.Context, string, time.Time) (*models.AnalysisReport, error) {
	return nil, nil
}
func (f *fakeReportStore) GetLatestReport(context.Context, string) (*models.AnalysisReport, error) {
	return nil, nil
}

type fakeMetrics struct {
	cacheHits, cacheMisses int
	analyses               int
}

func (f *fakeMetrics) RecordBarIngested(string, string) {}
func (f *fakeMetrics) RecordError(string)               {}
func (f *fakeMetrics) RecordAnalysis(string, string)    { f.analyses++ }
func (f *fakeMetrics) RecordLatency(string, float64)    {}
func (f *fakeMetrics) RecordCacheLookup(hit bool) {
	if hit {
		f.cacheHits++
	} else {
		f.cacheMisses++
	}
}

func growthSeries(symbol string, n int) *models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, n)
	for i := 0; i < n; i++ {
		price := 100 * math.Pow(1.001, float64(i))
		pts[i] = models.PricePoint{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price * 0.995,
			High:      price * 1.01,
			Low:       price * 0.99,
			Close:     price,
			Volume:    1e6,
		}
	}
	return &models.PriceSeries{Symbol: symbol, Points: pts}
}

func newTestAnalyzer(t *testing.T, prices *fakePriceStore, c cache.Service) (*AnalyzerUseCase, *fakeMetrics, *fakeReportStore) {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Engine.Ensemble.Neural.Epochs = 20
	eng, err := engine.New(cfg.Engine, logger.Nop())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	metrics := &fakeMetrics{}
	reports := &fakeReportStore{}
	uc := NewAnalyzerUseCase(eng, prices, &fakeFundamentalStore{}, reports, c, metrics, logger.Nop(), time.Minute)
	return uc, metrics, reports
}

func TestGetAnalysisComputesAndStores(t *testing.T) {
	prices := &fakePriceStore{series: map[string]*models.PriceSeries{
		"AAPL": growthSeries("AAPL", 250),
	}}
	uc, metrics, reports := newTestAnalyzer(t, prices, nil)

	report, err := uc.GetAnalysis(context.Background(), models.AnalysisRequest{Symbol: "aapl", Days: 365})
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if report.Symbol != "AAPL" {
		t.Fatalf("symbol not normalized: %q", report.Symbol)
	}
	if len(reports.stored) != 1 {
		t.Fatalf("expected 1 stored report, got %d", len(reports.stored))
	}
	if metrics.analyses != 1 {
		t.Fatalf("expected 1 analysis recorded, got %d", metrics.analyses)
	}
}

func TestGetAnalysisCacheHit(t *testing.T) {
	prices := &fakePriceStore{series: map[string]*models.PriceSeries{
		"AAPL": growthSeries("AAPL", 250),
	}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	uc, metrics, reports := newTestAnalyzer(t, prices, mc)
	ctx := context.Background()
	req := models.AnalysisRequest{Symbol: "AAPL", Days: 365}

	first, err := uc.GetAnalysis(ctx, req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := uc.GetAnalysis(ctx, req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if metrics.cacheHits != 1 || metrics.cacheMisses != 1 {
		t.Fatalf("hits=%d misses=%d", metrics.cacheHits, metrics.cacheMisses)
	}
	if len(reports.stored) != 1 {
		t.Fatalf("cached call should not store again, got %d", len(reports.stored))
	}
	if second.OverallScore != first.OverallScore {
		t.Fatalf("cached report differs: %v vs %v", second.OverallScore, first.OverallScore)
	}
}

func TestGetAnalysisRefreshBypassesCache(t *testing.T) {
	prices := &fakePriceStore{series: map[string]*models.PriceSeries{
		"AAPL": growthSeries("AAPL", 250),
	}}
	mc := cache.NewMemoryCache()
	defer mc.Close()
	uc, metrics, reports := newTestAnalyzer(t, prices, mc)
	ctx := context.Background()

	if _, err := uc.GetAnalysis(ctx, models.AnalysisRequest{Symbol: "AAPL", Days: 365}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := uc.GetAnalysis(ctx, models.AnalysisRequest{Symbol: "AAPL", Days: 365, Refresh: true}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if metrics.cacheHits != 0 {
		t.Fatalf("refresh must not hit cache, hits=%d", metrics.cacheHits)
	}
	if len(reports.stored) != 2 {
		t.Fatalf("expected 2 stored reports, got %d", len(reports.stored))
	}
}

func TestGetAnalysisNoData(t *testing.T) {
	uc, _, _ := newTestAnalyzer(t, &fakePriceStore{series: map[string]*models.PriceSeries{}}, nil)

	_, err := uc.GetAnalysis(context.Background(), models.AnalysisRequest{Symbol: "MISSING", Days: 365})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestGetIndicators(t *testing.T) {
	prices := &fakePriceStore{series: map[string]*models.PriceSeries{
		"AAPL": growthSeries("AAPL", 250),
	}}
	uc, _, _ := newTestAnalyzer(t, prices, nil)

	set, err := uc.GetIndicators(context.Background(), models.IndicatorsRequest{Symbol: "AAPL", Days: 365})
	if err != nil {
		t.Fatalf("GetIndicators: %v", err)
	}
	if set.SMA20 == nil || set.RSI == nil {
		t.Fatalf("expected populated indicators: %+v", set)
	}
}

func TestGetPredictions(t *testing.T) {
	prices := &fakePriceStore{series: map[string]*models.PriceSeries{
		"AAPL": growthSeries("AAPL", 250),
	}}
	uc, _, _ := newTestAnalyzer(t, prices, nil)

	res, err := uc.GetPredictions(context.Background(), models.PredictionsRequest{Symbol: "AAPL", Days: 365, Horizon: 7})
	if err != nil {
		t.Fatalf("GetPredictions: %v", err)
	}
	if res.HorizonDays != 7 {
		t.Fatalf("horizon %d", res.HorizonDays)
	}
}

func TestKafkaBarsHandler(t *testing.T) {
	store := &recordingPriceStore{}
	metrics := &fakeMetrics{}
	h := NewKafkaBarsHandler("bars.daily", store, metrics)

	if h.Topic() != "bars.daily" {
		t.Fatalf("topic %q", h.Topic())
	}
	msg := []byte(`{"symbol":"AAPL","t":1704067200000,"o":99,"h":101,"l":98,"c":100,"v":1000000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(store.bars) != 1 {
		t.Fatalf("expected 1 bar stored, got %d", len(store.bars))
	}
	if store.bars[0].Timestamp != 1704067200 {
		t.Fatalf("ms timestamp not normalized: %d", store.bars[0].Timestamp)
	}
}

type recordingPriceStore struct {
	fakePriceStore
	bars []*models.Bar
}

func (r *recordingPriceStore) StoreBars(_ context.Context, bars []*models.Bar) error {
	r.bars = append(r.bars, bars...)
	return nil
}
