package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
	pkgch "EquityLens/pkg/clickhouse"
)

// The key columns exist for range scans and dashboards; the full report
// rides along as JSON. ReplacingMergeTree keyed on (symbol, report_date)
// gives regenerate-replaces-prior for free.
var reportSchema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_reports (
        report_date    Date,
        symbol         LowCardinality(String),
        overall_score  Float64,
        recommendation LowCardinality(String),
        payload        String,
        updated_at     DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(updated_at)
    ORDER BY (symbol, report_date)`,
}

// ClickHouseReportStore implements ReportStore.
type ClickHouseReportStore struct {
	client *pkgch.Client
	db     *sql.DB
}

func NewClickHouseReportStore(client *pkgch.Client) domrepo.ReportStore {
	return &ClickHouseReportStore{client: client, db: client.DB()}
}

func (s *ClickHouseReportStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, reportSchema)
}

func (s *ClickHouseReportStore) StoreReport(ctx context.Context, report *models.AnalysisReport) error {
	if report == nil || report.Symbol == "" {
		return fmt.Errorf("store report: missing symbol")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	const q = `INSERT INTO analysis_reports (report_date, symbol, overall_score, recommendation, payload) VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		report.ReportDate.UTC(),
		report.Symbol,
		report.OverallScore,
		string(report.Recommendation),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("store report: %w", err)
	}
	return nil
}

func (s *ClickHouseReportStore) GetReport(ctx context.Context, symbol string, date time.Time) (*models.AnalysisReport, error) {
	const q = `
        SELECT payload
        FROM analysis_reports FINAL
        WHERE symbol = ? AND report_date = ?
        LIMIT 1`
	return s.scanReport(s.db.QueryRowContext(ctx, q, symbol, date.UTC()))
}

func (s *ClickHouseReportStore) GetLatestReport(ctx context.Context, symbol string) (*models.AnalysisReport, error) {
	const q = `
        SELECT payload
        FROM analysis_reports FINAL
        WHERE symbol = ?
        ORDER BY report_date DESC
        LIMIT 1`
	return s.scanReport(s.db.QueryRowContext(ctx, q, symbol))
}

func (s *ClickHouseReportStore) scanReport(row *sql.Row) (*models.AnalysisReport, error) {
	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
