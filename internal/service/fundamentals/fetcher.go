package fundamentals

import (
	"context"
	"fmt"
	"time"

	"EquityLens/internal/domain/models"
	drepo "EquityLens/internal/domain/repository"
	xhttp "EquityLens/pkg/http"
	"EquityLens/pkg/logger"
	"EquityLens/pkg/util"
)

// Fetcher pulls fundamental snapshots for tracked symbols from a REST
// endpoint and persists them. Fundamentals move on a quarterly cadence, so
// the refresh interval is long and a failed fetch for one symbol never
// blocks the rest.
type Fetcher struct {
	client   *xhttp.Client
	baseURL  string
	apiKey   string
	symbols  []string
	store    drepo.FundamentalStore
	metrics  drepo.Metrics
	log      *logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func New(
	baseURL, apiKey string,
	symbols []string,
	interval time.Duration,
	store drepo.FundamentalStore,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Fetcher{
		client:   xhttp.NewClient(xhttp.WithTimeout(30 * time.Second)),
		baseURL:  baseURL,
		apiKey:   apiKey,
		symbols:  symbols,
		store:    store,
		metrics:  metrics,
		log:      log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start fetches once immediately, then on every interval tick.
func (f *Fetcher) Start(ctx context.Context) {
	go func() {
		f.fetchAll(ctx)

		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-f.stopCh:
				return
			case <-ticker.C:
				f.fetchAll(ctx)
			}
		}
	}()
}

// Stop ends the refresh loop.
func (f *Fetcher) Stop() {
	close(f.stopCh)
}

func (f *Fetcher) fetchAll(ctx context.Context) {
	start := time.Now()
	stored := 0
	for _, symbol := range f.symbols {
		if ctx.Err() != nil {
			return
		}
		if err := f.fetchOne(ctx, symbol); err != nil {
			f.metrics.RecordError("fundamentals_fetch")
			f.log.Warn("fundamentals fetch",
				logger.String("symbol", symbol),
				logger.Error(err))
			continue
		}
		stored++
	}
	f.metrics.RecordLatency("fundamentals_refresh", time.Since(start).Seconds())
	f.log.Info("fundamentals refreshed",
		logger.Int("stored", stored),
		logger.Int("symbols", len(f.symbols)))
}

func (f *Fetcher) fetchOne(ctx context.Context, symbol string) error {
	symbol = util.NormalizeSymbol(symbol)

	var snap models.FundamentalSnapshot
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/fundamentals",
		QueryParams: map[string][]string{
			"symbol": {symbol},
		},
		Headers: f.authHeaders(),
	}, &snap)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", symbol, err)
	}

	if snap.Symbol == "" {
		snap.Symbol = symbol
	}
	if snap.FiscalYear == 0 {
		return fmt.Errorf("fetch %s: snapshot missing fiscal year", symbol)
	}

	if err := f.store.StoreSnapshot(ctx, &snap); err != nil {
		return fmt.Errorf("store %s: %w", symbol, err)
	}
	return nil
}

func (f *Fetcher) authHeaders() map[string]string {
	if f.apiKey == "" {
		return nil
	}
	return map[string]string{"X-Api-Key": f.apiKey}
}
