//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"AstroSignal/pkg/config"
	"AstroSignal/pkg/server"
)

// ProviderSet groups every provider needed by the server binary.
var ProviderSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideClickHouseClient,
	ProvideCacheStore,
	ProvideKafkaProducer,
	ProvideKafkaConsumer,
	ProvideJobRedis,

	// Ephemeris and use cases
	ProvideEphemerisProvider,
	ProvideParamsBuilder,
	ProvideTimelineUseCase,
	ProvideSnapshotUseCase,

	// Delivery
	ProvideRateLimiter,
	ProvideHTTPHandler,
	ProvideResultPublisher,
	ProvideKafkaTimelineHandler,
	ProvideJobQueue,
	ProvideJobStore,
	ProvideTimelineJobService,
	ProvideJobsHandler,

	// Application server
	ProvideApp,
)

// EngineSet is the subset needed to compute without serving.
var EngineSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideClickHouseClient,
	ProvideCacheStore,
	ProvideEphemerisProvider,
	ProvideParamsBuilder,
	ProvideTimelineUseCase,
	ProvideSnapshotUseCase,
	ProvideEngine,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(ProviderSet)
	return &server.App{}, nil
}

// InitializeEngine wires the computation core for command line use.
func InitializeEngine(cfg *config.Config) (*Engine, error) {
	wire.Build(EngineSet)
	return &Engine{}, nil
}
