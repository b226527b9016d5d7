package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"buf.build/go/protovalidate"
	"connectrpc.com/connect"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/atlekbai/casewatch/internal/config"
	"github.com/atlekbai/casewatch/internal/db"
	"github.com/atlekbai/casewatch/internal/handler"
	"github.com/atlekbai/casewatch/internal/middleware"
	"github.com/atlekbai/casewatch/internal/schema"
	"github.com/atlekbai/casewatch/internal/server"
	"github.com/atlekbai/casewatch/internal/service"
	"github.com/atlekbai/casewatch/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runServer(cfg, cfg.Logger())
		},
	}
}

func runServer(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache := schema.NewCache()
	logger.Info().Int("objects", cache.ObjectCount()).Msg("catalog loaded")

	source, err := openSource(ctx, cfg, cache, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	validator, err := protovalidate.New()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	interceptors := []connect.Interceptor{
		server.LoggingInterceptor(logger),
		server.ValidationInterceptor(validator),
	}

	caseService, err := service.NewCaseService(source, cache)
	if err != nil {
		return err
	}
	transcoder, err := server.NewTranscoder([]server.ConnectService{caseService}, interceptors...)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handler.New(source, cache.ObjectCount).Register(mux)
	mux.Handle("/", transcoder)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: middleware.Chain(mux,
			middleware.Recovery(logger),
			middleware.RequestID,
			middleware.Logging(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	logger.Info().Str("addr", cfg.Addr()).Str("source", cfg.DataSource).Msg("starting server")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// openSource opens the configured data source and wraps it with the Redis
// page cache when REDIS_URL is set.
func openSource(ctx context.Context, cfg *config.Config, cache *schema.Cache, logger zerolog.Logger) (store.Source, error) {
	var source store.Source
	switch cfg.DataSource {
	case config.SourceDuckDB:
		duck, err := store.OpenDuckDB(cfg.DuckDBPath)
		if err != nil {
			return nil, err
		}
		if cfg.CSVDir != "" {
			n, err := duck.RegisterCSVViews(ctx, cfg.CSVDir, cache.Objects(), logger)
			if err != nil {
				duck.Close()
				return nil, err
			}
			logger.Info().Int("views", n).Str("dir", cfg.CSVDir).Msg("csv views registered")
		}
		source = duck
	default:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info().Msg("connected to database")
		source = store.NewPostgres(pool)
	}

	if !cfg.CacheEnabled() {
		return source, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	cached, err := store.NewCached(source, redis.NewClient(opts), cfg.CacheTTL, logger)
	if err != nil {
		source.Close()
		return nil, err
	}
	logger.Info().Dur("ttl", cfg.CacheTTL).Msg("page cache enabled")
	return cached, nil
}
