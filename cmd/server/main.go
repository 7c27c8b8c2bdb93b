package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/aurumcrm/customer-import/internal/client"
	"github.com/aurumcrm/customer-import/internal/config"
	"github.com/aurumcrm/customer-import/internal/history"
	"github.com/aurumcrm/customer-import/internal/logging"
	"github.com/aurumcrm/customer-import/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upstream", cfg.Upstream.BulkCreateURL,
		"history_enabled", cfg.Database.URL != "",
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	// Import history is optional: no database, no audit trail.
	var hist *history.Store
	if cfg.Database.URL != "" {
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			slog.Error("failed to parse database URL", "error", err)
			os.Exit(1)
		}
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			slog.Error("failed to ping database", "error", err)
			os.Exit(1)
		}

		hist = history.NewStore(pool)
		if err := hist.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare history schema", "error", err)
			os.Exit(1)
		}
		slog.Info("import history enabled")
	}

	submitter := client.NewSubmitter(client.Options{
		Endpoint:   cfg.Upstream.BulkCreateURL,
		Timeout:    cfg.Upstream.Timeout,
		MaxRetries: cfg.Upstream.MaxRetries,
		Backoff:    cfg.Upstream.Backoff,
		BackoffMax: cfg.Upstream.BackoffMax,
		BasicUser:  cfg.Upstream.BasicUser,
		BasicPass:  cfg.Upstream.BasicPass,
	})

	server := web.NewServer(cfg, submitter, hist)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
