package usecase

import (
	"context"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
	mid "EquityLens/internal/middleware"
	"EquityLens/pkg/logger"
)

// BarCollector pulls bars off the market stream and hands them to the
// processor, through the ingest pipeline when one is configured. Stream
// errors trigger a reconnect with resubscribe.
type BarCollector struct {
	stream  drepo.MarketStream
	proc    *BarProcessor
	pipe    *mid.IngestPipeline
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewBarCollector(stream drepo.MarketStream, proc *BarProcessor, pipe *mid.IngestPipeline, metrics drepo.Metrics, log *logger.Logger) *BarCollector {
	if log == nil {
		log = logger.Nop()
	}
	return &BarCollector{stream: stream, proc: proc, pipe: pipe, metrics: metrics, log: log}
}

// IsConnected returns true if the market stream is connected.
func (c *BarCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *BarCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	barCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, barCh, errCh)
	return nil
}

func (c *BarCollector) consume(ctx context.Context, barCh <-chan *models.Bar, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("market stream error, reconnecting", logger.Error(err))
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					c.log.Error("reconnect failed", logger.Error(rerr))
					continue
				}
				barCh, errCh = c.stream.Read(ctx)
			}
		case b := <-barCh:
			if b == nil {
				continue
			}
			var err error
			if c.pipe != nil {
				err = c.pipe.Process(ctx, b)
			} else {
				err = c.proc.Process(ctx, b)
			}
			if err != nil {
				c.log.Error("process bar", logger.String("symbol", b.Symbol), logger.Error(err))
			}
		}
	}
}

// Processor returns the underlying BarProcessor for lifecycle management.
func (c *BarCollector) Processor() *BarProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *BarCollector) Shutdown(context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
