package jobs

import (
	"context"
	"fmt"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/usecase"
	"EquityLens/pkg/logger"
	"EquityLens/pkg/queue"
)

const TypeAnalyzeReport = "analyze_report"

// AnalyzePayload asks for a fresh report for one symbol.
type AnalyzePayload struct {
	Symbol string `json:"symbol"`
	Days   int    `json:"days"`
}

// AnalyzeJob regenerates a symbol's report, bypassing the cache so the
// stored report and cache entry both end up current.
type AnalyzeJob struct {
	analyzer *usecase.AnalyzerUseCase
	log      *logger.Logger
}

func NewAnalyzeJob(analyzer *usecase.AnalyzerUseCase, log *logger.Logger) *AnalyzeJob {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalyzeJob{analyzer: analyzer, log: log}
}

func (j *AnalyzeJob) Name() string { return "analyze-report" }
func (j *AnalyzeJob) Type() string { return TypeAnalyzeReport }

func (j *AnalyzeJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AnalyzePayload](payload)
	if err != nil {
		return fmt.Errorf("analyze job payload: %w", err)
	}
	if p.Symbol == "" {
		return fmt.Errorf("analyze job: symbol required")
	}
	if p.Days <= 0 {
		p.Days = 365
	}

	report, err := j.analyzer.GetAnalysis(ctx, models.AnalysisRequest{
		Symbol:  p.Symbol,
		Days:    p.Days,
		Refresh: true,
	})
	if err != nil {
		return fmt.Errorf("analyze %s: %w", p.Symbol, err)
	}

	j.log.Info("report regenerated",
		logger.String("symbol", report.Symbol),
		logger.String("recommendation", string(report.Recommendation)),
		logger.Float64("overall", report.OverallScore))
	return nil
}

var _ queue.Job = (*AnalyzeJob)(nil)
