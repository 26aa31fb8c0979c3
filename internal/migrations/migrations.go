package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Files holds the versioned up/down SQL scripts for the events and event_stats tables.
//
//go:embed *.sql
var Files embed.FS

// LatestVersion is the highest version among the embedded up scripts.
func LatestVersion() (uint, error) {
	ups, err := fs.Glob(Files, "*.up.sql")
	if err != nil {
		return 0, err
	}
	var latest uint
	for _, name := range ups {
		v, err := versionOf(name)
		if err != nil {
			return 0, err
		}
		latest = max(latest, v)
	}
	if latest == 0 {
		return 0, errors.New("no embedded migrations")
	}
	return latest, nil
}

// versionOf parses the numeric prefix of "000001_create_events.up.sql".
func versionOf(name string) (uint, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %q has no version prefix", name)
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("migration %q: invalid version: %w", name, err)
	}
	return uint(v), nil
}

// Apply brings the schema to LatestVersion and returns the version the database
// ends at. With autoMigrate off it only reads and reports the recorded version.
func Apply(db *sql.DB, autoMigrate bool) (uint, error) {
	want, err := LatestVersion()
	if err != nil {
		return 0, err
	}

	m, src, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	current, err := cleanVersion(m, src)
	if err != nil {
		return 0, err
	}
	if current > want {
		return current, fmt.Errorf("schema version %d is newer than this build (%d)", current, want)
	}

	if !autoMigrate {
		if current < want {
			slog.Warn("[Migrations] Schema is behind and auto-migration is disabled",
				"schema_version", current,
				"latest_version", want)
		}
		return current, nil
	}
	if current == want {
		slog.Info("[Migrations] Schema is up to date", "schema_version", current)
		return current, nil
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return current, fmt.Errorf("migrate schema from version %d to %d: %w", current, want, err)
	}
	applied, err := cleanVersion(m, src)
	if err != nil {
		return current, err
	}

	slog.Info("[Migrations] Schema migrated",
		"from_version", current,
		"to_version", applied)
	return applied, nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(Files, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, src, nil
}

// cleanVersion returns the recorded schema version, 0 for an empty database.
// A dirty version left by an interrupted run is stepped back to the version
// before it so the next Up re-runs the script. Scripts use IF NOT EXISTS.
func cleanVersion(m *migrate.Migrate, src source.Driver) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if !dirty {
		return version, nil
	}

	target := database.NilVersion
	if prev, err := src.Prev(version); err == nil {
		target = int(prev)
	}
	slog.Warn("[Migrations] Schema version is dirty, stepping back",
		"schema_version", version,
		"target_version", target)
	if err := m.Force(target); err != nil {
		return version, fmt.Errorf("force dirty schema version %d to %d: %w", version, target, err)
	}
	if target == database.NilVersion {
		return 0, nil
	}
	return uint(target), nil
}
