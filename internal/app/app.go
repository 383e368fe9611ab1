package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/contentforge/moderation-backend/internal/db"
	"github.com/contentforge/moderation-backend/internal/logger"
	"github.com/contentforge/moderation-backend/internal/observability"
	"github.com/contentforge/moderation-backend/internal/realtime/bus"
	"github.com/contentforge/moderation-backend/internal/utils"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	EventBus bus.Bus

	httpServer   *http.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "moderation-backend",
		Environment: logMode,
		Version:     os.Getenv("SERVICE_VERSION"),
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	store, err := wireContentStore(log, cfg.ContentStoreMode)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("wire content store: %w", err)
	}
	eventBus := wireEventBus(log)

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, store, eventBus)
	if err != nil {
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, serviceset, eventBus)
	middlewareset := wireMiddleware(log, serviceset)
	router := wireRouter(cfg, handlerset, middlewareset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		EventBus:     eventBus,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	port := utils.GetEnv("PORT", "8080", a.Log)
	a.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: a.Router,
	}
	a.Log.Info("Starting HTTP server", "port", port)
	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) {
	if a.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("HTTP server shutdown failed", "error", err)
		}
	}
	if a.EventBus != nil {
		_ = a.EventBus.Close()
	}
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(shutdownCtx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
