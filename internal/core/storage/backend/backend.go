// Package backend selects and opens the configured event store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/logagg/internal/core/config"
	"github.com/aevon-lab/logagg/internal/core/storage"
	pebblestore "github.com/aevon-lab/logagg/internal/core/storage/pebble"
	"github.com/aevon-lab/logagg/internal/core/storage/postgres"
	redisstore "github.com/aevon-lab/logagg/internal/core/storage/redis"
	"github.com/aevon-lab/logagg/internal/migrations"
)

// Open returns the store selected by cfg.Type. For Postgres it connects with
// retries, applies migrations, then validates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (storage.EventStore, error) {
	switch cfg.Type {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg)
	case config.BackendPebble:
		return openPebble(cfg)
	case config.BackendRedis:
		return openRedis(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database.type %q", cfg.Type)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (storage.EventStore, error) {
	db, err := postgres.Connect(ctx, cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnectRetries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}

	version, err := migrations.Apply(db, cfg.AutoMigrate)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema (version %d): %w", version, err)
	}

	adapter, err := postgres.NewAdapter(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("[Backend] Using postgres store")
	return adapter, nil
}

func openPebble(cfg config.DatabaseConfig) (storage.EventStore, error) {
	mode, err := pebblestore.ParseFsyncMode(cfg.PebbleFsync)
	if err != nil {
		return nil, err
	}
	store, err := pebblestore.Open(pebblestore.Options{Path: cfg.PebblePath, Fsync: mode})
	if err != nil {
		return nil, err
	}
	slog.Info("[Backend] Using pebble store", "path", cfg.PebblePath)
	return store, nil
}

func openRedis(ctx context.Context, cfg config.DatabaseConfig) (storage.EventStore, error) {
	client := redisstore.NewGoRedisClient(cfg.RedisAddr, cfg.RedisDB)
	store := redisstore.NewStore(client, cfg.RedisPrefix)

	if err := store.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	slog.Info("[Backend] Using redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return store, nil
}
