package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/aevon-lab/logagg/internal/core/config"
	"github.com/aevon-lab/logagg/internal/core/dedup"
	"github.com/aevon-lab/logagg/internal/core/storage/backend"
	"github.com/aevon-lab/logagg/internal/ingestion"
	"github.com/aevon-lab/logagg/internal/metrics"
	"github.com/aevon-lab/logagg/internal/projection"
	"github.com/aevon-lab/logagg/internal/server"
	"github.com/prometheus/client_golang/prometheus"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "logagg.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		slog.Error("Invalid log level", "level", cfg.Log.Level, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "backend", cfg.Database.Type, "address", fmtAddr(cfg.Server.Host, cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Initialize Storage (runs Postgres migrations when configured)
	store, err := backend.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize event store", "backend", cfg.Database.Type, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close event store", "error", err)
		}
	}()

	// 3. Initialize Metrics
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		slog.Error("Failed to register metrics", "error", err)
		os.Exit(1)
	}

	// 4. Initialize Dedup Engine
	engine := dedup.NewEngine(store, dedup.WithConcurrency(cfg.Ingest.BatchConcurrency))

	// 5. Initialize Ingestion (publish API)
	ingestionSvc := ingestion.NewService(engine, cfg.Server.MaxBodySizeMB, cfg.Ingest.MaxBatchSize)

	// 6. Initialize Projection (query API)
	projectionSvc := projection.NewService(store, cfg.Database.Type, version)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode, cfg.Database.Type, store, prometheus.DefaultGatherer)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)
	if cfg.Server.EnableAdmin {
		srv.RegisterAdmin(store)
		slog.Warn("Admin endpoints enabled", "route", "POST /admin/clear")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
