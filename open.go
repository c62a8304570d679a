// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config holds database configuration options.
type Config struct {
	// Path to database file. Use ":memory:" for a private in-memory database.
	// Persistent paths must be absolute and have a .db extension.
	Path string

	// Logger for operational logging. Uses slog.Default() if nil.
	Logger *slog.Logger

	// Scripts is an optional filesystem of setup scripts named
	// NNN_comment.sql, applied in ID order on every Open.
	Scripts fs.FS

	// ScriptTimeout bounds setup script execution time. Default: 90s.
	ScriptTimeout time.Duration

	// BusyTimeout is passed to SQLite's busy_timeout pragma. Default: 5s.
	BusyTimeout time.Duration

	// Producers are registered on the connection after the scripts run.
	Producers []Descriptor
}

// defaults returns a copy of cfg with default values applied.
func (cfg Config) defaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = ":memory:"
	}
	if cfg.ScriptTimeout == 0 {
		cfg.ScriptTimeout = 90 * time.Second
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	return cfg
}

// isMemory returns true if Path indicates an in-memory database.
func (cfg Config) isMemory() bool {
	return cfg.Path == ":memory:" || strings.HasPrefix(cfg.Path, "file::memory:")
}

// DB is a single-connection SQLite handle with its function registry.
// Functions live as temp virtual tables on that one connection, so the pool
// never opens a second one.
type DB struct {
	*sql.DB
	registry *Registry
	logger   *slog.Logger
}

// Open opens a database, applies setup scripts and registers the configured
// producers. For persistent paths the file is created if it does not exist.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	cfg = cfg.defaults()

	pragmas := memoryPragmas
	path := ":memory:"
	if !cfg.isMemory() {
		if err := validatePersistentPath(cfg.Path); err != nil {
			return nil, err
		}
		pragmas = persistentPragmas
		path = cfg.Path
		cfg.Logger.Info("DB mode: persistent", "path", cfg.Path)
	} else {
		cfg.Logger.Debug("DB mode: in-memory")
	}

	dsn := buildDSN(path, withBusyTimeout(pragmas, cfg.BusyTimeout))
	cfg.Logger.Debug("opening database", "dsn", dsn)

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	// Ensure cleanup on error
	success := false
	defer func() {
		if !success {
			sqldb.Close()
		}
	}()

	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	if cfg.Scripts != nil {
		scriptCtx, cancel := context.WithTimeout(ctx, cfg.ScriptTimeout)
		defer cancel()

		if err := runScripts(scriptCtx, sqldb, cfg.Scripts, cfg.Logger); err != nil {
			return nil, fmt.Errorf("scripts: %w", err)
		}
	}

	db := &DB{
		DB:       sqldb,
		registry: NewRegistry(sqldb, cfg.Logger),
		logger:   cfg.Logger,
	}
	for _, d := range cfg.Producers {
		if err := db.registry.Register(ctx, d); err != nil {
			_ = db.registry.Close(ctx)
			return nil, err
		}
	}

	success = true
	return db, nil
}

// Register makes d callable from SQL on this database.
func (db *DB) Register(ctx context.Context, d Descriptor) error {
	return db.registry.Register(ctx, d)
}

// Unregister removes a function from this database.
func (db *DB) Unregister(ctx context.Context, name string) error {
	return db.registry.Unregister(ctx, name)
}

// Registry returns the function registry of this database.
func (db *DB) Registry() *Registry { return db.registry }

// Close drops the registered functions and closes the database.
func (db *DB) Close() error {
	var errs *multierror.Error
	if err := db.registry.Close(context.Background()); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := db.DB.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// validatePersistentPath checks that a path is valid for a persistent database.
func validatePersistentPath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s: persistent database path must be absolute", path)
	}
	if filepath.Ext(path) != ".db" {
		return fmt.Errorf("%s: expected .db extension", path)
	}
	if isDirectory(path) {
		return fmt.Errorf("%s: path is a directory", path)
	}
	dir := filepath.Dir(path)
	if !isDirectory(dir) {
		return fmt.Errorf("%s: parent directory does not exist", dir)
	}
	return nil
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
