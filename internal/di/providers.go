package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"EquityLens/internal/domain/repository"
	"EquityLens/internal/engine"
	"EquityLens/internal/handler/api"
	"EquityLens/internal/jobs"
	mid "EquityLens/internal/middleware"
	internalrepo "EquityLens/internal/repository"
	"EquityLens/internal/service/fundamentals"
	"EquityLens/internal/service/marketdata"
	"EquityLens/internal/usecase"
	"EquityLens/pkg/cache"
	pkgch "EquityLens/pkg/clickhouse"
	"EquityLens/pkg/config"
	xhttp "EquityLens/pkg/http"
	pkgkafka "EquityLens/pkg/kafka"
	"EquityLens/pkg/logger"
	"EquityLens/pkg/metrics"
	"EquityLens/pkg/queue"
	"EquityLens/pkg/server"
)

// ProvideLogger builds the process logger. Production gets JSON at info,
// everything else console at debug.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lc := &logger.Config{Level: "debug", Format: "console", Output: "stdout"}
	if cfg.Environment == "production" {
		lc.Level = "info"
		lc.Format = "json"
	}
	l, err := logger.New(lc)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates the ClickHouse client. Table creation is
// owned by the stores, which Init their own schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, time.Hour),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngine builds the analysis engine from the engine config section.
func ProvideEngine(cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	return engine.New(cfg.Engine, log)
}

// ProvideBarStore creates the ClickHouse bar store and initializes its schema.
func ProvideBarStore(client *pkgch.Client, log *logger.Logger) (repository.PriceStore, error) {
	store := internalrepo.NewClickHouseBarStore(client, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("bar store init: %w", err)
	}
	return store, nil
}

type schemaIniter interface {
	Init(ctx context.Context) error
}

func initStore(name string, store interface{}) error {
	si, ok := store.(schemaIniter)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := si.Init(ctx); err != nil {
		return fmt.Errorf("%s init: %w", name, err)
	}
	return nil
}

// ProvideFundamentalStore creates the ClickHouse fundamentals store.
func ProvideFundamentalStore(client *pkgch.Client) (repository.FundamentalStore, error) {
	store := internalrepo.NewClickHouseFundamentalStore(client)
	if err := initStore("fundamental store", store); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideReportStore creates the ClickHouse report store.
func ProvideReportStore(client *pkgch.Client) (repository.ReportStore, error) {
	store := internalrepo.NewClickHouseReportStore(client)
	if err := initStore("report store", store); err != nil {
		return nil, err
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled and bars go straight to ClickHouse.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideBarPublisher wraps the producer as a bar publisher.
func ProvideBarPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.BarsTopic)
}

// ProvideKafkaConsumer creates the bars consumer, or nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler handles bars arriving from the Kafka topic.
func ProvideKafkaBarsHandler(store repository.PriceStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, store, m)
}

// ProvideMarketStream creates the market data WebSocket stream, or nil when
// no feed is configured and the service runs API-only.
func ProvideMarketStream(cfg *config.Config, log *logger.Logger) repository.MarketStream {
	if cfg.MarketData.WebSocketURL == "" || len(cfg.MarketData.Symbols) == 0 {
		return nil
	}
	return marketdata.New(
		cfg.MarketData.APIKey,
		cfg.MarketData.WebSocketURL,
		cfg.MarketData.Symbols,
		cfg.MarketData.ReconnectDelay,
		cfg.MarketData.PingInterval,
		log,
	)
}

// ProvideFundamentalsFetcher creates the periodic fundamentals fetcher, or
// nil when no fundamentals endpoint is configured.
func ProvideFundamentalsFetcher(
	cfg *config.Config,
	store repository.FundamentalStore,
	m repository.Metrics,
	log *logger.Logger,
) *fundamentals.Fetcher {
	if cfg.MarketData.FundamentalsURL == "" || len(cfg.MarketData.Symbols) == 0 {
		return nil
	}
	return fundamentals.New(
		cfg.MarketData.FundamentalsURL,
		cfg.MarketData.APIKey,
		cfg.MarketData.Symbols,
		cfg.MarketData.FundamentalsRefresh,
		store,
		m,
		log,
	)
}

// ProvideBarProcessor routes bars to Kafka when enabled, straight to
// ClickHouse otherwise.
func ProvideBarProcessor(
	pub repository.Publisher,
	store repository.PriceStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.BarProcessor {
	backend := "clickhouse"
	if cfg.Kafka.Enabled {
		backend = "kafka"
	}
	return usecase.NewBarProcessor(pub, store, m, backend)
}

// ProvideBarCollector wires stream, ingest pipeline and processor, or nil
// when there is no stream.
func ProvideBarCollector(
	stream repository.MarketStream,
	processor *usecase.BarProcessor,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.BarCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewBarCollector(stream, processor, pipe, m, log)
}

// ProvideCache creates the layered report cache, or nil when caching is
// disabled and every request recomputes.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Addr),
		cache.WithRedisPassword(cfg.Cache.Password),
		cache.WithRedisDB(cfg.Cache.DB),
		cache.WithRedisPrefix(cfg.Cache.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideAnalyzer builds the analysis use case.
func ProvideAnalyzer(
	eng *engine.Engine,
	prices repository.PriceStore,
	fundamentals repository.FundamentalStore,
	reports repository.ReportStore,
	c cache.Service,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.AnalyzerUseCase {
	return usecase.NewAnalyzerUseCase(eng, prices, fundamentals, reports, c, m, log, cfg.Cache.ReportTTL)
}

// ProvideAnalysisHandler builds the HTTP handler for the analysis API.
func ProvideAnalysisHandler(log *logger.Logger, analyzer *usecase.AnalyzerUseCase) xhttp.Handler {
	return api.NewAnalysisHandler(log, analyzer)
}

// ProvideQueue creates the Redis job queue with the analyze job registered,
// or nil when background refresh is disabled.
func ProvideQueue(cfg *config.Config, analyzer *usecase.AnalyzerUseCase, log *logger.Logger) *queue.RedisQueue {
	if !cfg.Jobs.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	q := queue.NewRedisQueue(log, &queue.Config{
		Workers:    cfg.Jobs.Workers,
		RetryLimit: cfg.Jobs.RetryLimit,
		RetryDelay: cfg.Jobs.RetryDelay,
	}, client)
	q.RegisterJob(jobs.NewAnalyzeJob(analyzer, log))
	return q
}

// ProvideScheduler enqueues periodic refreshes for every tracked symbol.
func ProvideScheduler(cfg *config.Config, q *queue.RedisQueue, log *logger.Logger) *jobs.Scheduler {
	if q == nil || len(cfg.MarketData.Symbols) == 0 {
		return nil
	}
	return jobs.NewScheduler(q, cfg.MarketData.Symbols, cfg.Jobs.RefreshDays, cfg.Jobs.RefreshInterval, log)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	collector *usecase.BarCollector,
	processor *usecase.BarProcessor,
	fetcher *fundamentals.Fetcher,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	q *queue.RedisQueue,
	scheduler *jobs.Scheduler,
	c cache.Service,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, handler, collector, processor, fetcher, consumer, kh, q, scheduler, c, chClient)
}
