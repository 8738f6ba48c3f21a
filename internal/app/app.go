package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/http"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/observability"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics
	Server   *http.Server

	dbService    *db.Service
	scheduler    *cron.Cron
	otelShutdown func(context.Context) error
}

// New loads configuration from the environment, connects to the database
// and redis, and wires every layer.
func New(log *logger.Logger) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, cfg.Otel)
	metrics := observability.Init(log)

	dbService, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg.Redis)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	a, err := assemble(log, cfg, dbService.DB(), clients, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		return nil, err
	}
	a.dbService = dbService
	a.otelShutdown = otelShutdown
	return a, nil
}

// assemble wires repos, services and transport on an open database.
func assemble(log *logger.Logger, cfg Config, gdb *gorm.DB, clients Clients, metrics *observability.Metrics) (*App, error) {
	rule, err := rewards.LoadRule(cfg.RewardsConfig)
	if err != nil {
		return nil, err
	}
	var events realtime.Publisher = clients.Bus
	events = observability.CountingPublisher(events, metrics)

	reposet := wireRepos(gdb, log)
	serviceset := wireServices(gdb, log, cfg, rule, reposet, events, clients.BannerCounter)
	handlerset := wireHandlers(log, gdb, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := http.NewServer(":"+cfg.Port, wireRouterConfig(log, cfg, metrics, handlerset, middleware))

	scheduler, err := newScheduler(log, cfg.BannerFlushSpec, serviceset.Banner, metrics)
	if err != nil {
		return nil, err
	}

	return &App{
		Log:       log,
		DB:        gdb,
		Cfg:       cfg,
		Repos:     reposet,
		Services:  serviceset,
		Clients:   clients,
		Metrics:   metrics,
		Server:    server,
		scheduler: scheduler,
	}, nil
}

// Run serves HTTP and runs the scheduled jobs until ctx is cancelled, then
// shuts down within the configured timeout and drains buffered banner stats.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(gctx, a.logEvent); err != nil {
			a.Log.Warn("event forwarder not started", "error", err)
		}
	}

	a.scheduler.Start()
	a.Log.Info("Scheduler started", "banner_flush", a.Cfg.BannerFlushSpec)

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
		return a.Server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()

		<-a.scheduler.Stop().Done()
		flushBannerStats(a.Log, a.Services.Banner, a.Metrics)
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) logEvent(ev realtime.Event) {
	a.Log.Debug("domain event", "event", ev.Event, "user_id", ev.UserID)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
