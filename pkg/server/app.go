package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"EquityLens/internal/jobs"
	"EquityLens/internal/service/fundamentals"
	"EquityLens/internal/usecase"
	"EquityLens/pkg/cache"
	pkgch "EquityLens/pkg/clickhouse"
	"EquityLens/pkg/config"
	xhttp "EquityLens/pkg/http"
	pkgkafka "EquityLens/pkg/kafka"
	applogger "EquityLens/pkg/logger"
	"EquityLens/pkg/queue"
)

// App owns the process lifecycle: it starts the optional ingestion side
// (collector, kafka consumer), the optional background refresh side (queue,
// scheduler), and the HTTP API, then shuts everything down in reverse
// dependency order on SIGINT/SIGTERM.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server

	collector   *usecase.BarCollector
	processor   *usecase.BarProcessor
	fundFetcher *fundamentals.Fetcher
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler

	queueSvc  *queue.RedisQueue
	scheduler *jobs.Scheduler

	cacheSvc cache.Service
	chClient *pkgch.Client
}

// New assembles the application. Optional subsystems are passed as nil when
// their configuration section is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpHandler xhttp.Handler,
	collector *usecase.BarCollector,
	processor *usecase.BarProcessor,
	fundFetcher *fundamentals.Fetcher,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	queueSvc *queue.RedisQueue,
	scheduler *jobs.Scheduler,
	cacheSvc cache.Service,
	chClient *pkgch.Client,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		log:         log,
		httpHandler: httpHandler,
		collector:   collector,
		processor:   processor,
		fundFetcher: fundFetcher,
		consumer:    consumer,
		kh:          kh,
		queueSvc:    queueSvc,
		scheduler:   scheduler,
		cacheSvc:    cacheSvc,
		chClient:    chClient,
	}
}

// Run starts every configured subsystem and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(a.log),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.log.Error("bar collector", applogger.Error(err))
			}
		}()
		a.log.Info("bar collector started",
			applogger.Strings("symbols", a.cfg.MarketData.Symbols))
	}

	if a.fundFetcher != nil {
		a.fundFetcher.Start(ctx)
		a.log.Info("fundamentals fetcher started",
			applogger.Duration("interval", a.cfg.MarketData.FundamentalsRefresh))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.queueSvc != nil {
		if err := a.queueSvc.Start(); err != nil {
			a.log.Error("job queue start", applogger.Error(err))
			return err
		}
		if a.scheduler != nil {
			a.scheduler.Start(ctx)
			a.log.Info("report scheduler started",
				applogger.Duration("interval", a.cfg.Jobs.RefreshInterval))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops subsystems in reverse order: producers of work first,
// stores and clients last.
func (a *App) shutdown(ctx context.Context) error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.queueSvc != nil {
		stopCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
		if err := a.queueSvc.Stop(stopCtx); err != nil {
			a.log.Warn("job queue stop", applogger.Error(err))
		}
		cancel()
	}

	if a.fundFetcher != nil {
		a.fundFetcher.Stop()
	}

	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("collector stop", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop", applogger.Error(err))
		}
	}

	if a.processor != nil {
		a.processor.Close()
	}

	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.log.Warn("cache close", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
