//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"OpenFOF/pkg/config"
	"OpenFOF/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure
		ProvideMetrics,
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideCache,
		ProvidePriceStore,
		ProvideEventPublisher,

		// Domain services
		ProvideCatalog,
		ProvideAssetCatalog,
		ProvideProjectionEngine,

		// Use cases
		ProvidePortfolioAnalytics,
		ProvideAssetQueries,

		// HTTP
		ProvideHandlers,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		server.New,
	)
	return &server.App{}, nil, nil
}
