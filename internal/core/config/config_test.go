package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logagg.yaml")
	requireNoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Database.Type != BackendPostgres {
		t.Fatalf("expected postgres default, got %q", cfg.Database.Type)
	}
	if cfg.Database.ConnectRetries != 10 || cfg.Database.RetryDelay != 2*time.Second {
		t.Fatalf("unexpected retry defaults: %d / %v", cfg.Database.ConnectRetries, cfg.Database.RetryDelay)
	}
	if cfg.Ingest.BatchConcurrency != 1 {
		t.Fatalf("expected sequential batches by default, got %d", cfg.Ingest.BatchConcurrency)
	}
	if cfg.Server.EnableAdmin {
		t.Fatalf("admin endpoints must be disabled by default")
	}
}

func TestLoad_ValidPebbleConfig(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  port: 9090
  host: "127.0.0.1"
  mode: "debug"
  enable_admin: true
database:
  type: "pebble"
  pebble_path: "/var/lib/logagg"
  pebble_fsync: "interval"
ingest:
  max_batch_size: 500
  batch_concurrency: 8
log:
  level: "debug"
`)

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Server.Port != 9090 || !cfg.Server.EnableAdmin {
		t.Fatalf("server section not applied: %+v", cfg.Server)
	}
	if cfg.Database.PebblePath != "/var/lib/logagg" || cfg.Database.PebbleFsync != "interval" {
		t.Fatalf("database section not applied: %+v", cfg.Database)
	}
	if cfg.Ingest.MaxBatchSize != 500 || cfg.Ingest.BatchConcurrency != 8 {
		t.Fatalf("ingest section not applied: %+v", cfg.Ingest)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	cfgPath := writeConfig(t, `
database:
  type: "redis"
  redis_addr: "redis-a:6379"
`)
	t.Setenv("LOGAGG_DATABASE__REDIS_ADDR", "redis-b:6379")
	t.Setenv("LOGAGG_INGEST__MAX_BATCH_SIZE", "42")

	cfg, err := Load(cfgPath)
	requireNoError(t, err)
	if cfg.Database.RedisAddr != "redis-b:6379" {
		t.Fatalf("expected env override, got %q", cfg.Database.RedisAddr)
	}
	if cfg.Ingest.MaxBatchSize != 42 {
		t.Fatalf("expected env override of max_batch_size, got %d", cfg.Ingest.MaxBatchSize)
	}
}

func TestLoad_InvalidConfigFailsStartup(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "server port",
			body:    "server:\n  port: -1\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "server mode",
			body:    "server:\n  mode: \"verbose\"\n",
			wantErr: "invalid server.mode",
		},
		{
			name:    "backend type",
			body:    "database:\n  type: \"sqlite\"\n",
			wantErr: "unsupported database.type",
		},
		{
			name:    "pebble fsync",
			body:    "database:\n  type: \"pebble\"\n  pebble_fsync: \"never\"\n",
			wantErr: "invalid database.pebble_fsync",
		},
		{
			name:    "postgres dsn",
			body:    "database:\n  dsn: \"\"\n",
			wantErr: "database.dsn is required",
		},
		{
			name:    "batch size",
			body:    "ingest:\n  max_batch_size: 0\n",
			wantErr: "ingest.max_batch_size must be > 0",
		},
		{
			name:    "batch concurrency",
			body:    "ingest:\n  batch_concurrency: 0\n",
			wantErr: "ingest.batch_concurrency must be > 0",
		},
		{
			name:    "log level",
			body:    "log:\n  level: \"trace\"\n",
			wantErr: "invalid log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q error, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFileFailsStartup(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("expected file load error, got %v", err)
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
