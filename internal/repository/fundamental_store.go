package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"EquityLens/internal/domain/models"
	domrepo "EquityLens/internal/domain/repository"
	pkgch "EquityLens/pkg/clickhouse"
)

// Snapshots are stored as a JSON payload next to the key columns: the ratio
// set is wide, mostly null, and only ever read whole, so per-ratio columns
// would buy nothing.
var fundamentalSchema = []string{
	`CREATE TABLE IF NOT EXISTS fundamentals (
        symbol         LowCardinality(String),
        fiscal_year    UInt16,
        fiscal_quarter UInt8,
        payload        String,
        updated_at     DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(updated_at)
    ORDER BY (symbol, fiscal_year, fiscal_quarter)`,
}

// ClickHouseFundamentalStore implements FundamentalStore.
type ClickHouseFundamentalStore struct {
	client *pkgch.Client
	db     *sql.DB
}

func NewClickHouseFundamentalStore(client *pkgch.Client) domrepo.FundamentalStore {
	return &ClickHouseFundamentalStore{client: client, db: client.DB()}
}

func (s *ClickHouseFundamentalStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, fundamentalSchema)
}

func (s *ClickHouseFundamentalStore) StoreSnapshot(ctx context.Context, snap *models.FundamentalSnapshot) error {
	if snap == nil || snap.Symbol == "" {
		return fmt.Errorf("store snapshot: missing symbol")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	const q = `INSERT INTO fundamentals (symbol, fiscal_year, fiscal_quarter, payload) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, snap.Symbol, snap.FiscalYear, snap.FiscalQuarter, string(payload)); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (s *ClickHouseFundamentalStore) GetLatestSnapshot(ctx context.Context, symbol string) (*models.FundamentalSnapshot, error) {
	const q = `
        SELECT payload
        FROM fundamentals FINAL
        WHERE symbol = ?
        ORDER BY fiscal_year DESC, fiscal_quarter DESC
        LIMIT 1`
	var payload string
	err := s.db.QueryRowContext(ctx, q, symbol).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil // no fundamentals is a legal state, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var snap models.FundamentalSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
