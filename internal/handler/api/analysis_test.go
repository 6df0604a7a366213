package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/engine"
	"EquityLens/internal/usecase"
	"EquityLens/pkg/config"
	"EquityLens/pkg/logger"
)

type stubPriceStore struct {
	series map[string]*models.PriceSeries
}

func (s *stubPriceStore) Init(context.Context) error                     { return nil }
func (s *stubPriceStore) StoreBars(context.Context, []*models.Bar) error { return nil }
func (s *stubPriceStore) Health(context.Context) error                   { return nil }
func (s *stubPriceStore) Close() error                                   { return nil }
func (s *stubPriceStore) GetSeries(_ context.Context, symbol string, _, _ time.Time) (*models.PriceSeries, error) {
	return s.series[symbol], nil
}
func (s *stubPriceStore) GetLatestSeries(_ context.Context, symbol string, _ int) (*models.PriceSeries, error) {
	return s.series[symbol], nil
}

type stubFundamentalStore struct{}

func (stubFundamentalStore) StoreSnapshot(context.Context, *models.FundamentalSnapshot) error {
	return nil
}
func (stubFundamentalStore) GetLatestSnapshot(context.Context, string) (*models.FundamentalSnapshot, error) {
	return nil, nil
}

type stubReportStore struct{}

func (stubReportStore) StoreReport(context.Context, *models.AnalysisReport) error { return nil }
func (stubReportStore) GetReport(context.Context, string, time.Time) (*models.AnalysisReport, error) {
	return nil, nil
}
func (stubReportStore) GetLatestReport(context.Context, string) (*models.AnalysisReport, error) {
	return nil, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordBarIngested(string, string) {}
func (stubMetrics) RecordError(string)               {}
func (stubMetrics) RecordAnalysis(string, string)    {}
func (stubMetrics) RecordLatency(string, float64)    {}
func (stubMetrics) RecordCacheLookup(bool)           {}

func newTestHandler(t *testing.T) *AnalysisHandler {
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

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]models.PricePoint, 250)
	for i := range pts {
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
	prices := &stubPriceStore{series: map[string]*models.PriceSeries{
		"AAPL": {Symbol: "AAPL", Points: pts},
	}}

	uc := usecase.NewAnalyzerUseCase(eng, prices, stubFundamentalStore{}, stubReportStore{}, nil, stubMetrics{}, logger.Nop(), time.Minute)
	return NewAnalysisHandler(logger.Nop(), uc)
}

func doRequest(h *AnalysisHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalysisEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/api/analysis?symbol=AAPL&days=365")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status int                   `json:"status"`
		Data   models.AnalysisReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Symbol != "AAPL" {
		t.Fatalf("symbol %q", resp.Data.Symbol)
	}
	if resp.Data.Recommendation == "" {
		t.Fatalf("missing recommendation")
	}
}

func TestAnalysisMissingSymbol(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/api/analysis")
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected embedded 400, got %d: %s", resp.Status, rec.Body.String())
	}
}

func TestAnalysisUnknownSymbol(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/api/analysis?symbol=ZZZZ")
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected embedded 404, got %d: %s", resp.Status, rec.Body.String())
	}
}

func TestIndicatorsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/api/indicators?symbol=AAPL")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.IndicatorSet `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.SMA20 == nil {
		t.Fatalf("expected sma_20 present")
	}
}

func TestPredictionsEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/api/predictions?symbol=AAPL&horizon=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data models.EnsembleResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.HorizonDays != 7 {
		t.Fatalf("horizon %d", resp.Data.HorizonDays)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doRequest(h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}
