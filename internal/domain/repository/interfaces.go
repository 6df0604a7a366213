package repository

import (
	"context"
	"time"

	"EquityLens/internal/domain/models"
)

type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Bar, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

type Publisher interface {
	Publish(ctx context.Context, b *models.Bar) error
	PublishBatch(ctx context.Context, bars []*models.Bar) error
	Close() error
}

// PriceStore persists daily bars and reads them back as validated series.
type PriceStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBars(ctx context.Context, bars []*models.Bar) error
	GetSeries(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error)
	GetLatestSeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// FundamentalStore persists per-fiscal-period ratio snapshots. Writing the
// same (symbol, year, quarter) twice replaces the earlier row.
type FundamentalStore interface {
	StoreSnapshot(ctx context.Context, snap *models.FundamentalSnapshot) error
	GetLatestSnapshot(ctx context.Context, symbol string) (*models.FundamentalSnapshot, error)
}

// ReportStore persists analysis reports keyed by (symbol, report date);
// regeneration replaces the prior report.
type ReportStore interface {
	StoreReport(ctx context.Context, report *models.AnalysisReport) error
	GetReport(ctx context.Context, symbol string, date time.Time) (*models.AnalysisReport, error)
	GetLatestReport(ctx context.Context, symbol string) (*models.AnalysisReport, error)
}

type Metrics interface {
	RecordBarIngested(source, symbol string)
	RecordError(kind string)
	RecordAnalysis(symbol, recommendation string)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(hit bool)
}
