package di

import (
	"AstroSignal/internal/domain/repository"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/cache"
	pkgch "AstroSignal/pkg/clickhouse"
	applogger "AstroSignal/pkg/logger"
)

// Engine is the computation core without delivery adapters, used by the CLI.
type Engine struct {
	Logger   *applogger.Logger
	Provider repository.EphemerisProvider
	Builder  *usecase.ParamsBuilder
	Timeline *usecase.TimelineUseCase
	Snapshot *usecase.SnapshotUseCase

	ch    *pkgch.Client
	store cache.Service
}

func ProvideEngine(
	l *applogger.Logger,
	p repository.EphemerisProvider,
	b *usecase.ParamsBuilder,
	tl *usecase.TimelineUseCase,
	snap *usecase.SnapshotUseCase,
	ch *pkgch.Client,
	store cache.Service,
) *Engine {
	return &Engine{Logger: l, Provider: p, Builder: b, Timeline: tl, Snapshot: snap, ch: ch, store: store}
}

// Close releases the clients opened for the engine.
func (e *Engine) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
	if e.ch != nil {
		_ = e.ch.Close()
	}
}
