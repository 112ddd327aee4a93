package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OpenFOF/internal/service/ratelimit"
	"OpenFOF/pkg/config"
	xhttp "OpenFOF/pkg/http"
	applogger "OpenFOF/pkg/logger"
)

const (
	limiterSweepEvery = time.Minute
	limiterIdle       = 10 * time.Minute
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	httpServer *xhttp.Server
	limiter    *ratelimit.Limiter
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies. limiter may be nil.
func New(cfg *config.Config, httpServer *xhttp.Server, limiter *ratelimit.Limiter, l *applogger.Logger) *App {
	return &App{
		cfg:        cfg,
		httpServer: httpServer,
		limiter:    limiter,
		l:          l,
	}
}

// Run starts the application and blocks until interrupted or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("application started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("prices_backend", a.cfg.Prices.Backend),
		applogger.String("cache_backend", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	t := time.NewTicker(limiterSweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.l.Debug("rate limiter swept", applogger.Int("keys", n))
			}
		}
	}
}

// shutdown stops the HTTP server. Infrastructure clients are closed by the
// DI cleanup returned alongside the App.
func (a *App) shutdown() error {
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.l.Info("shutdown complete")
	return nil
}
