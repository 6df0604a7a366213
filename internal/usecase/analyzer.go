package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
	"EquityLens/internal/engine"
	"EquityLens/pkg/cache"
	"EquityLens/pkg/logger"
	"EquityLens/pkg/util"
)

// ErrNoData means the store holds no price history for the symbol.
var ErrNoData = errors.New("no price data for symbol")

// AnalyzerUseCase serves analysis requests: cached report when fresh,
// otherwise load history, run the engine, persist and cache the result.
type AnalyzerUseCase struct {
	engine       *engine.Engine
	prices       drepo.PriceStore
	fundamentals drepo.FundamentalStore
	reports      drepo.ReportStore
	cache        cache.Service // nil when caching is disabled
	metrics      drepo.Metrics
	log          *logger.Logger
	reportTTL    time.Duration
}

func NewAnalyzerUseCase(
	eng *engine.Engine,
	prices drepo.PriceStore,
	fundamentals drepo.FundamentalStore,
	reports drepo.ReportStore,
	c cache.Service,
	metrics drepo.Metrics,
	log *logger.Logger,
	reportTTL time.Duration,
) *AnalyzerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if reportTTL <= 0 {
		reportTTL = 30 * time.Minute
	}
	return &AnalyzerUseCase{
		engine:       eng,
		prices:       prices,
		fundamentals: fundamentals,
		reports:      reports,
		cache:        c,
		metrics:      metrics,
		log:          log,
		reportTTL:    reportTTL,
	}
}

// GetAnalysis returns the full report for a symbol. Refresh bypasses the
// cache and always recomputes.
func (uc *AnalyzerUseCase) GetAnalysis(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error) {
	symbol := util.NormalizeSymbol(req.Symbol)
	key := cache.Key("report", symbol, req.Days)

	if uc.cache != nil && !req.Refresh {
		var cached models.AnalysisReport
		if err := uc.cache.Get(ctx, key, &cached); err == nil {
			uc.metrics.RecordCacheLookup(true)
			return &cached, nil
		}
		uc.metrics.RecordCacheLookup(false)
	}

	// Single flight across instances: whoever holds the lock computes,
	// everyone else re-reads the cache after a short wait.
	if uc.cache != nil && !req.Refresh {
		lockKey := cache.Key("lock", "report", symbol, req.Days)
		acquired, err := uc.cache.TryLock(ctx, lockKey, 30*time.Second)
		if err == nil && acquired {
			defer func() { _ = uc.cache.Unlock(ctx, lockKey) }()
		} else if err == nil && !acquired {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
			var cached models.AnalysisReport
			if cerr := uc.cache.Get(ctx, key, &cached); cerr == nil {
				uc.metrics.RecordCacheLookup(true)
				return &cached, nil
			}
		}
	}

	report, err := uc.compute(ctx, symbol, req.Days)
	if err != nil {
		return nil, err
	}

	if err := uc.reports.StoreReport(ctx, report); err != nil {
		// A report we cannot persist is still a valid answer.
		uc.metrics.RecordError("report_store")
		uc.log.Error("store report", logger.String("symbol", symbol), logger.Error(err))
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, key, report, uc.reportTTL); err != nil {
			uc.log.Warn("cache report", logger.String("symbol", symbol), logger.Error(err))
		}
	}

	return report, nil
}

// GetIndicators returns the latest indicator set for a symbol.
func (uc *AnalyzerUseCase) GetIndicators(ctx context.Context, req models.IndicatorsRequest) (*models.IndicatorSet, error) {
	symbol := util.NormalizeSymbol(req.Symbol)
	series, err := uc.loadSeries(ctx, symbol, req.Days)
	if err != nil {
		return nil, err
	}
	return uc.engine.Indicators(series)
}

// GetPredictions runs the ensemble for one horizon.
func (uc *AnalyzerUseCase) GetPredictions(ctx context.Context, req models.PredictionsRequest) (*models.EnsembleResult, error) {
	symbol := util.NormalizeSymbol(req.Symbol)
	series, err := uc.loadSeries(ctx, symbol, req.Days)
	if err != nil {
		return nil, err
	}
	return uc.engine.Predict(ctx, series, req.Horizon)
}

// Health reports storage reachability.
func (uc *AnalyzerUseCase) Health(ctx context.Context) error {
	return uc.prices.Health(ctx)
}

func (uc *AnalyzerUseCase) compute(ctx context.Context, symbol string, days int) (*models.AnalysisReport, error) {
	start := time.Now()

	series, err := uc.loadSeries(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	fund, err := uc.fundamentals.GetLatestSnapshot(ctx, symbol)
	if err != nil {
		// Fundamentals are optional; a broken store degrades, not fails.
		uc.metrics.RecordError("fundamental_store")
		uc.log.Warn("load fundamentals", logger.String("symbol", symbol), logger.Error(err))
		fund = nil
	}

	report, err := uc.engine.Analyze(ctx, series, fund, time.Now().UTC())
	if err != nil {
		uc.metrics.RecordError("analysis")
		return nil, fmt.Errorf("analyze %s: %w", symbol, err)
	}

	uc.metrics.RecordAnalysis(symbol, string(report.Recommendation))
	uc.metrics.RecordLatency("analysis", time.Since(start).Seconds())
	return report, nil
}

func (uc *AnalyzerUseCase) loadSeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	series, err := uc.prices.GetLatestSeries(ctx, symbol, days)
	if err != nil {
		uc.metrics.RecordError("price_store")
		return nil, fmt.Errorf("load series %s: %w", symbol, err)
	}
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return series, nil
}
