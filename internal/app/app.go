package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/fabsketch-backend/internal/data/db"
	httpserver "github.com/yungbote/fabsketch-backend/internal/http"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Metrics  *observability.Metrics
	Clients  Clients
	Repos    Repos
	Services Services
	Server   *httpserver.Server

	pg           *db.PostgresService
	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelCfg := observability.OtelConfigFromEnv(cfg.Version)
	shutdownOTel := observability.InitOTel(ctx, log, otelCfg)
	metrics := observability.Init(log)

	fail := func(err error) (*App, error) {
		_ = shutdownOTel(context.Background())
		log.Sync()
		return nil, err
	}

	pg, err := db.NewPostgresService(log, db.ConfigFromEnv())
	if err != nil {
		return fail(fmt.Errorf("init database: %w", err))
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		return fail(fmt.Errorf("automigrate: %w", err))
	}
	theDB := pg.DB()

	clientset, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = pg.Close()
		return fail(err)
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, clientset, reposet, metrics)
	handlerset := wireHandlers(log, cfg, serviceset)
	middleware, err := wireMiddleware(log, cfg)
	if err != nil {
		clientset.Close()
		_ = pg.Close()
		return fail(err)
	}
	server := wireServer(log, cfg, otelCfg.ServiceName, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Metrics:      metrics,
		Clients:      clientset,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		pg:           pg,
		shutdownOTel: shutdownOTel,
	}, nil
}

// Start launches background collectors. It is a no-op on a started App.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(a.Log, a.DB)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis, 15*time.Second)
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts the App
// down within the configured grace period.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Log.Info("Server listening", "addr", a.Cfg.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Server.Run()
	}()

	select {
	case <-ctx.Done():
		a.Log.Info("Shutting down", "grace", a.Cfg.Server.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.Server.ShutdownTimeout)
		defer cancel()
		return a.Shutdown(shutdownCtx)
	case err := <-errCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(err, a.Shutdown(shutdownCtx))
	}
}

// Shutdown drains in-flight requests, then releases clients, the database and
// the tracer. Generation requests still waiting on the backend are cut off at
// ctx's deadline.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
