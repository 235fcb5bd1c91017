//go:build wireinject
// +build wireinject

package di

import (
	"PredBoard/internal/dashboard"
	"PredBoard/internal/handler/web"
	"PredBoard/internal/handler/ws"
	"PredBoard/internal/usecase"
	"PredBoard/pkg/config"
	"PredBoard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Backend and view cache
		ProvideBackend,
		ProvideViewCache,

		// Use cases
		ProvideUniverseUseCase,
		ProvideSignalsUseCase,
		usecase.NewAnalysisUseCase,
		usecase.NewScreenerUseCase,
		ProvideCountryUseCase,

		// Sessions
		dashboard.NewController,
		ProvideTabStore,
		ProvideSessions,
		ProvideForceGuard,

		// Events
		ws.NewHub,
		ProvideKafkaProducer,
		ProvidePublisher,
		ProvideRefresher,

		// HTTP
		web.NewRenderer,
		ProvidePageHandler,
		ProvideDashboardHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return nil, nil, nil
}
