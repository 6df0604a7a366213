//go:build wireinject
// +build wireinject

package di

import (
	"EquityLens/pkg/config"
	"EquityLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,

		// Repositories
		ProvideBarStore,
		ProvideFundamentalStore,
		ProvideReportStore,
		ProvideBarPublisher,
		ProvideMarketStream,

		// Engine and use cases
		ProvideEngine,
		ProvideAnalyzer,
		ProvideBarProcessor,
		ProvideBarCollector,
		ProvideFundamentalsFetcher,
		ProvideKafkaBarsHandler,

		// Background jobs
		ProvideQueue,
		ProvideScheduler,

		// HTTP surface
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
