package usecase

import (
	"context"
	"encoding/json"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
	pkgkafka "EquityLens/pkg/kafka"
)

// KafkaBarsHandler consumes bar messages and writes them to the price store.
type KafkaBarsHandler struct {
	topic   string
	store   drepo.PriceStore
	metrics drepo.Metrics
}

func NewKafkaBarsHandler(topic string, store drepo.PriceStore, metrics drepo.Metrics) *KafkaBarsHandler {
	return &KafkaBarsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaBarsHandler) Topic() string { return h.topic }

func (h *KafkaBarsHandler) Handle(ctx context.Context, b []byte) error {
	var bar models.Bar
	if err := json.Unmarshal(b, &bar); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if bar.Timestamp > 1e11 { // ms
		bar.Timestamp = bar.Timestamp / 1000
	}
	h.metrics.RecordLatency("ingest_e2e", time.Since(time.Unix(bar.Timestamp, 0)).Seconds())

	start := time.Now()
	err := h.store.StoreBars(ctx, []*models.Bar{&bar})
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordBarIngested("kafka", bar.Symbol)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaBarsHandler)(nil)
