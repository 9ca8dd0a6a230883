//go:build wireinject
// +build wireinject

package di

import (
	"PharmaWatch/pkg/config"
	"PharmaWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Analytics
		ProvideForecaster,
		ProvideMonitorConfig,
		ProvideMonitor,

		// Collectors and stores
		ProvideEventSource,
		ProvideTrialSource,
		ProvideResultStore,
		ProvideRunStore,
		ProvideAlertPublisher,

		// Pipeline and facade
		ProvideBroadcaster,
		ProvideRefresher,
		ProvideJobQueue,
		ProvideMonitorHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
