package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
	pkgch "EquityLens/pkg/clickhouse"
	applogger "EquityLens/pkg/logger"
)

// barSchema keeps one row per (symbol, day); re-ingesting a day replaces
// the earlier row on merge, and reads go through FINAL so replacements are
// visible immediately.
var barSchema = []string{
	`CREATE TABLE IF NOT EXISTS bars_daily (
        day        Date,
        symbol     LowCardinality(String),
        open       Float64,
        high       Float64,
        low        Float64,
        close      Float64,
        volume     Float64,
        updated_at DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(updated_at)
    ORDER BY (symbol, day)`,
}

// ClickHouseBarStore implements PriceStore over the bars_daily table.
type ClickHouseBarStore struct {
	client *pkgch.Client
	db     *sql.DB
	log    *applogger.Logger
}

func NewClickHouseBarStore(client *pkgch.Client, log *applogger.Logger) domrepo.PriceStore {
	return &ClickHouseBarStore{client: client, db: client.DB(), log: log}
}

func (s *ClickHouseBarStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, barSchema)
}

func (s *ClickHouseBarStore) StoreBars(ctx context.Context, bars []*models.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	const chunkSize = 2000
	for start := 0; start < len(bars); start += chunkSize {
		end := start + chunkSize
		if end > len(bars) {
			end = len(bars)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, b := range bars[start:end] {
			if b == nil || b.Symbol == "" || b.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(b.Timestamp, 0).UTC(),
				b.Symbol,
				b.Open,
				b.High,
				b.Low,
				b.Close,
				b.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := "INSERT INTO bars_daily (day, symbol, open, high, low, close, volume) VALUES " + strings.Join(values, ",")
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.log.Error("clickhouse store bars",
				applogger.Int("count", len(values)),
				applogger.Error(err))
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseBarStore) GetSeries(ctx context.Context, symbol string, from, to time.Time) (*models.PriceSeries, error) {
	const q = `
        SELECT day, open, high, low, close, volume
        FROM bars_daily FINAL
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC`
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()
	return s.scanSeries(symbol, rows)
}

func (s *ClickHouseBarStore) GetLatestSeries(ctx context.Context, symbol string, days int) (*models.PriceSeries, error) {
	const q = `
        SELECT day, open, high, low, close, volume
        FROM (
            SELECT day, open, high, low, close, volume
            FROM bars_daily FINAL
            WHERE symbol = ?
            ORDER BY day DESC
            LIMIT ?
        )
        ORDER BY day ASC`
	rows, err := s.db.QueryContext(ctx, q, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("get latest series: %w", err)
	}
	defer rows.Close()
	return s.scanSeries(symbol, rows)
}

func (s *ClickHouseBarStore) scanSeries(symbol string, rows *sql.Rows) (*models.PriceSeries, error) {
	series := &models.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		series.Points = append(series.Points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func (s *ClickHouseBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStore) Close() error {
	return nil // pool owned by pkg client
}
