package fundamentals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"EquityLens/internal/domain/models"
	"EquityLens/pkg/logger"
)

type fakeStore struct {
	mu    sync.Mutex
	snaps []*models.FundamentalSnapshot
}

func (s *fakeStore) StoreSnapshot(_ context.Context, snap *models.FundamentalSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
	return nil
}

func (s *fakeStore) GetLatestSnapshot(context.Context, string) (*models.FundamentalSnapshot, error) {
	return nil, nil
}

func (s *fakeStore) stored() []*models.FundamentalSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.FundamentalSnapshot(nil), s.snaps...)
}

type fakeMetrics struct{}

func (fakeMetrics) RecordBarIngested(string, string) {}
func (fakeMetrics) RecordError(string)               {}
func (fakeMetrics) RecordAnalysis(string, string)    {}
func (fakeMetrics) RecordLatency(string, float64)    {}
func (fakeMetrics) RecordCacheLookup(bool)           {}

func TestFetchOneStoresSnapshot(t *testing.T) {
	pe := 18.5
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "AAPL" {
			t.Errorf("symbol query %q", got)
		}
		if got := r.Header.Get("X-Api-Key"); got != "secret" {
			t.Errorf("api key header %q", got)
		}
		_ = json.NewEncoder(w).Encode(models.FundamentalSnapshot{
			Symbol:        "AAPL",
			FiscalYear:    2026,
			FiscalQuarter: 2,
			PERatio:       &pe,
		})
	}))
	defer srv.Close()

	store := &fakeStore{}
	f := New(srv.URL, "secret", []string{"aapl"}, time.Hour, store, fakeMetrics{}, logger.Nop())

	if err := f.fetchOne(context.Background(), "aapl"); err != nil {
		t.Fatalf("fetchOne: %v", err)
	}

	snaps := store.stored()
	if len(snaps) != 1 {
		t.Fatalf("stored %d snapshots", len(snaps))
	}
	if snaps[0].Symbol != "AAPL" || snaps[0].FiscalYear != 2026 {
		t.Fatalf("snapshot %+v", snaps[0])
	}
	if snaps[0].PERatio == nil || *snaps[0].PERatio != pe {
		t.Fatalf("pe ratio not carried")
	}
}

func TestFetchOneRejectsIncompleteSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(models.FundamentalSnapshot{Symbol: "AAPL"})
	}))
	defer srv.Close()

	store := &fakeStore{}
	f := New(srv.URL, "", []string{"AAPL"}, time.Hour, store, fakeMetrics{}, logger.Nop())

	if err := f.fetchOne(context.Background(), "AAPL"); err == nil {
		t.Fatalf("expected error for snapshot without fiscal year")
	}
	if len(store.stored()) != 0 {
		t.Fatalf("incomplete snapshot must not be stored")
	}
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "BAD" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(models.FundamentalSnapshot{
			Symbol:     r.URL.Query().Get("symbol"),
			FiscalYear: 2026,
		})
	}))
	defer srv.Close()

	store := &fakeStore{}
	f := New(srv.URL, "", []string{"BAD", "MSFT"}, time.Hour, store, fakeMetrics{}, logger.Nop())

	f.fetchAll(context.Background())

	snaps := store.stored()
	if len(snaps) != 1 || snaps[0].Symbol != "MSFT" {
		t.Fatalf("expected only MSFT stored, got %+v", snaps)
	}
}
