package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/looking-glass/backend/internal/api"
	"github.com/looking-glass/backend/internal/archive"
	"github.com/looking-glass/backend/internal/config"
	"github.com/looking-glass/backend/internal/kv"
	"github.com/looking-glass/backend/internal/logger"
	"github.com/looking-glass/backend/internal/logstore"
	"github.com/looking-glass/backend/internal/measure"
	"github.com/looking-glass/backend/internal/nodes"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := os.Getenv("LG_CONFIG")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := logger.Init(cfg.Logging); err != nil {
		logger.Fatal().Err(err).Msg("failed to configure logging")
	}

	log := logger.GetLogger()
	log.Info().Str("version", Version).Str("build_time", BuildTime).Msg("starting looking glass backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := openBackend(ctx, cfg)
	if backend != nil {
		defer backend.Close()
	}

	var storeOpts []logstore.Option

	var arc *archive.Store

	if cfg.Archive.Path != "" {
		arc, err = archive.New(cfg.Archive.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Archive.Path).Msg("failed to open archive")
		}
		defer arc.Close()

		storeOpts = append(storeOpts, logstore.WithArchiver(arc))
		log.Info().Str("path", cfg.Archive.Path).Msg("trimmed-entry archive enabled")
	}

	logs := logstore.New(backend, storeOpts...)

	catalog, err := nodes.Load(cfg.Nodes.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Nodes.CatalogPath).Msg("failed to load node catalog")
	}

	log.Info().Int("nodes", len(catalog.All())).Msg("node catalog loaded")

	client := measure.NewClient(cfg.Measurement.BaseURL)
	jobs := measure.NewManager(client, log,
		measure.WithBudget(cfg.Measurement.PollAttempts, cfg.Measurement.PollInterval))

	h := api.NewHandler(logs, jobs, catalog, arc, Version)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Job status polling and health checks are too chatty to log.
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/measurements/") ||
				path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.Gzip())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	api.RegisterRoutes(e, h)

	s := &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("listening")

		if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}

// openBackend opens the configured kv backend. A nil return means no
// backend is configured; log endpoints then fail fast with guidance.
func openBackend(ctx context.Context, cfg *config.Config) kv.Store {
	log := logger.GetLogger()

	switch cfg.KV.Backend {
	case "nats":
		store, err := kv.NewNatsStore(ctx, cfg.KV.NatsURL, cfg.KV.NatsBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open NATS KV backend")
		}

		log.Info().Str("bucket", cfg.KV.NatsBucket).Msg("using NATS KV backend")

		return store
	case "sqlite":
		store, err := kv.NewSqliteStore(cfg.KV.SqlitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite KV backend")
		}

		log.Info().Str("path", cfg.KV.SqlitePath).Msg("using sqlite KV backend")

		return store
	case "":
		log.Warn().Msg("no KV backend configured; log endpoints will be unavailable")

		return nil
	default:
		log.Fatal().Str("backend", cfg.KV.Backend).Msg("unknown KV backend (expected nats or sqlite)")

		return nil
	}
}
