//go:build wireinject
// +build wireinject

package di

import (
	"StockCast/pkg/config"
	"StockCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideYahooClient,
		ProvideClickHouseArchive,
		ProvideKafkaProducer,

		// Repositories
		ProvideBarSource,

		// Forecasting core
		ProvideForecastConfig,
		ProvideEngine,

		// Use cases
		ProvidePredictUseCase,
		ProvideSearchUseCase,
		ProvideCandlesUseCase,

		// HTTP
		ProvideRateLimiter,
		ProvideHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
