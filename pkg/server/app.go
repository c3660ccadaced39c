package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AstroSignal/pkg/config"
	xhttp "AstroSignal/pkg/http"
	pkgkafka "AstroSignal/pkg/kafka"
	applogger "AstroSignal/pkg/logger"
)

type closer struct {
	name string
	fn   func() error
}

// Worker is a background component started with the HTTP server.
type Worker interface {
	Start() error
	Stop(ctx context.Context) error
}

type namedWorker struct {
	name string
	w    Worker
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handlers   []xhttp.Handler
	httpServer *xhttp.Server
	workers    []namedWorker
	sweeper    func(interval time.Duration, stop <-chan struct{})
	closers    []closer
	checks     []check
	stop       chan struct{}
}

// New creates a new App instance serving handlers.
func New(cfg *config.Config, l *applogger.Logger, handlers ...xhttp.Handler) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, handlers: handlers, stop: make(chan struct{})}
}

// AddWorker registers a background worker; workers stop in reverse order.
func (a *App) AddWorker(name string, w Worker) {
	a.workers = append(a.workers, namedWorker{name: name, w: w})
}

// SetJobs enables the Kafka timeline worker.
func (a *App) SetJobs(consumer *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	consumer.RegisterHandler(h)
	a.AddWorker("kafka consumer "+h.Topic(), consumer)
}

// SetSweeper registers a background janitor run until shutdown.
func (a *App) SetSweeper(fn func(interval time.Duration, stop <-chan struct{})) { a.sweeper = fn }

// OnClose registers a resource released at shutdown, in reverse order.
func (a *App) OnClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// AddCheck registers a dependency checked by /healthz.
func (a *App) AddCheck(name string, fn func(ctx context.Context) error) {
	a.checks = append(a.checks, check{name: name, fn: fn})
}

// Health checks every registered dependency.
func (a *App) Health(ctx context.Context) xhttp.HealthStatus {
	st := xhttp.HealthStatus{Status: "ok", Backend: a.cfg.Ephemeris.Backend}
	if len(a.checks) == 0 {
		return st
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	st.Checks = make(map[string]string, len(a.checks))
	for _, c := range a.checks {
		if err := c.fn(ctx); err != nil {
			st.Status = "degraded"
			st.Checks[c.name] = err.Error()
			continue
		}
		st.Checks[c.name] = "ok"
	}
	return st
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handlers,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(a.cfg.Server.CORSOrigins),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithServerLogger(a.l.With("http")),
		xhttp.WithHealth(a.Health),
	)

	if a.sweeper != nil {
		go a.sweeper(time.Minute, a.stop)
	}

	for _, nw := range a.workers {
		if err := nw.w.Start(); err != nil {
			a.l.Error("worker start error", applogger.String("worker", nw.name), applogger.Error(err))
			return err
		}
		a.l.Info("worker started", applogger.String("worker", nw.name))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("astrosignal started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("backend", a.cfg.Ephemeris.Backend),
		applogger.String("zodiac", a.cfg.Ephemeris.Zodiac),
		applogger.Int("port", a.cfg.Server.Port),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	close(a.stop)

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	for i := len(a.workers) - 1; i >= 0; i-- {
		nw := a.workers[i]
		if err := nw.w.Stop(ctx); err != nil {
			a.l.Warn("worker stop error", applogger.String("worker", nw.name), applogger.Error(err))
		}
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.l.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
