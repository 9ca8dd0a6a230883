package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"PharmaWatch/internal/domain/repository"
	"PharmaWatch/internal/handler/api"
	"PharmaWatch/internal/handler/ws"
	"PharmaWatch/internal/usecase"
	"PharmaWatch/pkg/config"
	xhttp "PharmaWatch/pkg/http"
	applogger "PharmaWatch/pkg/logger"
	"PharmaWatch/pkg/queue"
)

// App encapsulates the application lifecycle: the initial monitoring pass,
// the scheduled refresh ticker, the HTTP facade, and the background queue.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	refresher  *usecase.Refresher
	handler    *api.MonitorHandler
	feed       *ws.Broadcaster
	jobs       *queue.RedisQueue
	store      repository.RunStore
	alerts     repository.AlertPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	refresher *usecase.Refresher,
	handler *api.MonitorHandler,
	feed *ws.Broadcaster,
	jobs *queue.RedisQueue,
	store repository.RunStore,
	alerts repository.AlertPublisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		refresher: refresher,
		handler:   handler,
		feed:      feed,
		jobs:      jobs,
		store:     store,
		alerts:    alerts,
	}
}

// routes registers the API and websocket handlers on one Echo instance.
type routes struct {
	api  *api.MonitorHandler
	feed *ws.Broadcaster
}

func (r routes) RegisterRoutes(e *echo.Echo) {
	r.api.RegisterRoutes(e)
	r.feed.RegisterRoutes(e)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(routes{api: a.handler, feed: a.feed},
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			a.logger.Error("job queue start failed", applogger.Error(err))
		} else {
			a.logger.Info("job queue started")
		}
	}

	// First pass fills the result cache so the facade has data to serve.
	go a.refresher.RefreshAll(ctx)
	go a.refreshLoop(ctx)
	a.logger.Info("monitoring started",
		applogger.Strings("products", a.refresher.Products()),
		applogger.Duration("interval_ms", a.cfg.Monitor.UpdateInterval),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Monitor.UpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresher.RefreshAll(ctx)
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobs != nil {
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			a.logger.Warn("job queue stop error", applogger.Error(err))
		}
	}

	a.feed.Close()

	if a.alerts != nil {
		if err := a.alerts.Close(); err != nil {
			a.logger.Warn("alert publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("run store close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
