package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"EquityLens/internal/domain/models"
)

type countingProc struct {
	n   int
	err error
}

func (p *countingProc) Process(context.Context, *models.Bar) error {
	p.n++
	return p.err
}

type noopMetrics struct{}

func (noopMetrics) RecordBarIngested(string, string) {}
func (noopMetrics) RecordError(string)               {}
func (noopMetrics) RecordAnalysis(string, string)    {}
func (noopMetrics) RecordLatency(string, float64)    {}
func (noopMetrics) RecordCacheLookup(bool)           {}

func validTestBar() *models.Bar {
	return &models.Bar{Symbol: "AAPL", Timestamp: 1704067200, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1e6}
}

func TestPipelineRejectsInvalidBar(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{})

	cases := []*models.Bar{
		nil,
		{Symbol: "", Timestamp: 1, Close: 1},
		{Symbol: "AAPL", Timestamp: 0, Close: 1},
		{Symbol: "AAPL", Timestamp: 1, Close: -1},
		{Symbol: "AAPL", Timestamp: 1, High: 1, Low: 2},
	}
	for i, b := range cases {
		if err := p.Process(context.Background(), b); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.n != 0 {
		t.Fatalf("invalid bars must not reach processor, got %d", proc.n)
	}
}

func TestPipelineForwardsValidBar(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{})

	if err := p.Process(context.Background(), validTestBar()); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if proc.n != 1 {
		t.Fatalf("expected 1 processed, got %d", proc.n)
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, noopMetrics{}, WithMaxRPS(1))

	ctx := context.Background()
	if err := p.Process(ctx, validTestBar()); err != nil {
		t.Fatalf("first: %v", err)
	}
	// immediate second bar for the same symbol is dropped without error
	if err := p.Process(ctx, validTestBar()); err != nil {
		t.Fatalf("throttled: %v", err)
	}
	if proc.n != 1 {
		t.Fatalf("expected throttle to drop, processed %d", proc.n)
	}

	other := validTestBar()
	other.Symbol = "MSFT"
	if err := p.Process(ctx, other); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if proc.n != 2 {
		t.Fatalf("other symbol must pass, processed %d", proc.n)
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &countingProc{err: errors.New("down")}
	p := NewIngestPipeline(proc, noopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestBar()); err == nil {
		t.Fatalf("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected bar buffered, depth %d", len(p.bufCh))
	}
}

func TestPipelineFlushRetries(t *testing.T) {
	proc := &countingProc{err: errors.New("down")}
	p := NewIngestPipeline(proc, noopMetrics{}, WithBufferSize(4))

	ctx := context.Background()
	_ = p.Process(ctx, validTestBar())

	proc.err = nil
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(p.bufCh) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("buffered bar was not flushed")
}
