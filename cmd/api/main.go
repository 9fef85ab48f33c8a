// Package main is the entrypoint for the hostplan GraphQL API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hostplan/hostplan/internal/cache"
	"github.com/hostplan/hostplan/internal/config"
	"github.com/hostplan/hostplan/internal/graph"
	"github.com/hostplan/hostplan/internal/handler"
	"github.com/hostplan/hostplan/internal/keygen"
	"github.com/hostplan/hostplan/internal/loader"
	"github.com/hostplan/hostplan/internal/metrics"
	"github.com/hostplan/hostplan/internal/middleware"
	"github.com/hostplan/hostplan/internal/repository"
	"github.com/hostplan/hostplan/internal/server"
	"github.com/hostplan/hostplan/internal/service"
	"github.com/hostplan/hostplan/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.MigrateOnStart {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", err.Error()))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	recorder := metrics.NewPrometheus()

	var (
		st    store.Store = repo
		redis *cache.Cache
	)
	if cfg.CacheEnabled() {
		redis, err = cache.New(ctx, cfg.RedisURL, cache.DefaultOptions())
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		st = cache.NewAccountStore(repo, redis.Accounts(cfg.AccountCacheTTL), recorder, logger)
		logger.Info("account cache enabled", slog.Duration("ttl", cfg.AccountCacheTTL))
	} else {
		logger.Info("account cache disabled")
	}

	accounts := service.NewAccountService(st, keygen.Default(), recorder)
	loaderCfg := loader.Config{Wait: cfg.LoaderWait, MaxBatch: cfg.LoaderMaxBatch}

	schema, err := graph.NewSchema(st, accounts, graph.Config{
		MaxSelections: cfg.GraphQLMaxSelections,
		Loader:        loaderCfg,
	}, recorder, logger)
	if err != nil {
		logger.Error("failed to build schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	h := handler.New(logger)
	gqlHandler := handler.NewGraphQLHandler(schema, st, loaderCfg, recorder, logger)

	healthHandler := handler.NewHealthHandler(repo, cacheHealthCheck(redis))

	r := setupRouter(h, healthHandler, gqlHandler, recorder.Handler(), cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if redis != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return redis.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"max_selections", cfg.GraphQLMaxSelections,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// cacheHealthCheck returns c as a HealthChecker, or a nil interface when the
// cache is disabled. A typed nil *cache.Cache would be pinged and panic.
func cacheHealthCheck(c *cache.Cache) handler.HealthChecker {
	if c == nil {
		return nil
	}
	return c
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", "hostplan"))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	gqlHandler *handler.GraphQLHandler,
	metricsHandler http.Handler,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	r.Get("/", h.Index)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins())))
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		r.Method(http.MethodGet, "/graphql", gqlHandler)
		r.Method(http.MethodPost, "/graphql", gqlHandler)
		r.Method(http.MethodOptions, "/graphql", gqlHandler)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
