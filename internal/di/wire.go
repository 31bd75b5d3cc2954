//go:build wireinject
// +build wireinject

package di

import (
	"YieldPull/pkg/config"
	"YieldPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories (with business logic)
		ProvideRateStorage,
		ProvideRatePublisher,
		ProvideRateStream,

		// Use cases
		ProvideRateUpdateProcessor,
		ProvideCurveCollector,
		ProvideKafkaRatesHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
