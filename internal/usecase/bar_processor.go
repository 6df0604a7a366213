package usecase

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
)

// BarProcessor routes incoming bars to the configured backend: "kafka"
// publishes onto the bars topic for the consumer to persist, "clickhouse"
// writes straight to the price store.
type BarProcessor struct {
	pub     drepo.Publisher
	store   drepo.PriceStore
	metrics drepo.Metrics
	backend string
}

func NewBarProcessor(pub drepo.Publisher, store drepo.PriceStore, metrics drepo.Metrics, backend string) *BarProcessor {
	return &BarProcessor{pub: pub, store: store, metrics: metrics, backend: backend}
}

// Process routes a single bar to the configured backend.
func (p *BarProcessor) Process(ctx context.Context, b *models.Bar) error {
	if b == nil {
		return fmt.Errorf("bar is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, b)
	case "clickhouse":
		err = p.store.StoreBars(ctx, []*models.Bar{b})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process bar: %w", err)
	}

	p.metrics.RecordBarIngested(p.backend, b.Symbol)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple bars in one backend call.
func (p *BarProcessor) ProcessBatch(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, bars)
	case "clickhouse":
		err = p.store.StoreBars(ctx, bars)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, b := range bars {
		p.metrics.RecordBarIngested(p.backend, b.Symbol)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *BarProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
