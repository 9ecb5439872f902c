package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	dbpkg "github.com/yungbote/gradebridge-backend/internal/data/db"
	"github.com/yungbote/gradebridge-backend/internal/http"
	"github.com/yungbote/gradebridge-backend/internal/observability"
	"github.com/yungbote/gradebridge-backend/internal/platform/logger"
	"github.com/yungbote/gradebridge-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *dbpkg.Service
	Router   *gin.Engine
	Repos    Repos
	Clients  Clients
	Services Services
	SSEHub   *realtime.SSEHub

	otelShutdown func(context.Context) error
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

	metrics := observability.Init(log)
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "gradebridge",
		Environment: cfg.Environment,
	})

	vcfg, err := resolveVectorProviderConfig(cfg.VectorProvider, cfg.DBDriver)
	if err != nil {
		log.Sync()
		return nil, err
	}

	dbs, err := openDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbs.DB()

	reposet := wireRepos(theDB, log)

	vb, err := buildVectorBackend(ctx, log, vcfg, reposet.Guideline)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(theDB, log, cfg, reposet, clients, vb)

	if vb.Warm {
		n, err := serviceset.Guidelines.WarmMirror(ctx, 0)
		if err != nil {
			log.Warn("Vector index warm-up failed; resolver will rely on scan", "error", err)
		} else {
			log.Info("Vector index warmed", "provider", vb.Provider, "guidelines", n)
		}
	}

	hub := realtime.NewSSEHub(log)
	handlerset := wireHandlers(log, theDB, serviceset, clients, hub)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbs,
		Router:       router,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		SSEHub:       hub,
		otelShutdown: otelShutdown,
	}, nil
}

func openDatabase(log *logger.Logger, cfg Config) (*dbpkg.Service, error) {
	dbs, err := dbpkg.Open(log, dbpkg.Config{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBDSN,
		LogLevel: cfg.DBLogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return dbs, nil
}

// Run serves HTTP and forwards bus events to SSE clients until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Clients.Bus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start event forwarder: %w", err)
		}
		return nil
	})

	server := &http.Server{Engine: a.Router}
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr)
		return server.Run(gctx, a.Cfg.Addr, time.Duration(a.Cfg.ShutdownTimeoutSeconds)*time.Second)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if err := a.Clients.Close(); err != nil {
		a.Log.Warn("clients close failed", "error", err)
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
