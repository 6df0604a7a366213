package jobs

import (
	"context"
	"time"

	"EquityLens/pkg/logger"
	"EquityLens/pkg/queue"
)

// Scheduler enqueues a report regeneration for every tracked symbol on a
// fixed interval, so stored reports stay fresh without request traffic.
type Scheduler struct {
	q        queue.Service
	symbols  []string
	days     int
	interval time.Duration
	log      *logger.Logger
	stopCh   chan struct{}
}

func NewScheduler(q queue.Service, symbols []string, days int, interval time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if days <= 0 {
		days = 365
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		q:        q,
		symbols:  symbols,
		days:     days,
		interval: interval,
		log:      log,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the schedule loop. The first round fires after one
// interval, not at startup, so a crash-restart loop does not hammer the
// engine.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.enqueueAll(ctx)
			}
		}
	}()
}

// Stop ends the schedule loop.
func (s *Scheduler) Stop() {
	close(s.stopCh)
}

func (s *Scheduler) enqueueAll(ctx context.Context) {
	for _, symbol := range s.symbols {
		payload := AnalyzePayload{Symbol: symbol, Days: s.days}
		if err := s.q.Enqueue(ctx, TypeAnalyzeReport, payload); err != nil {
			s.log.Error("enqueue analyze job",
				logger.String("symbol", symbol),
				logger.Error(err))
			continue
		}
	}
	s.log.Info("analysis round enqueued", logger.Int("symbols", len(s.symbols)))
}
