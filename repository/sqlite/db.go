package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nijaru/summora/errors"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS summary_cache (
    key TEXT PRIMARY KEY,
    summary TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_summary_cache_timestamp ON summary_cache(timestamp);
`

type DBConfig struct {
	MaxRetries         int
	RetryDelay         time.Duration
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxRetries:         3,
		RetryDelay:         100 * time.Millisecond,
		MaxConnections:     10,
		MaxIdleConnections: 5,
		ConnMaxLifetime:    time.Hour,
	}
}

// DB wraps the sqlite handle and its prepared statements. One DB backs
// both the cache and the settings store.
type DB struct {
	db         *sql.DB
	config     DBConfig
	statements *PreparedStatements
}

// Open creates or opens the database at dbPath, applies pragmas and schema
// and prepares statements. ":memory:" and "file:" DSNs skip directory setup.
func Open(ctx context.Context, dbPath string, cfg DBConfig) (*DB, error) {
	const op = "sqlite.Open"

	if !isMemoryDSN(dbPath) {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.Internal(op, err, "failed to create database directory")
		}
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to open database")
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConnections)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := configurePragmas(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := execSchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	stmts := &PreparedStatements{}
	if err := stmts.Prepare(ctx, sqlDB); err != nil {
		stmts.Close()
		sqlDB.Close()
		return nil, err
	}

	return &DB{db: sqlDB, config: cfg, statements: stmts}, nil
}

func (d *DB) Close() error {
	stmtErr := d.statements.Close()
	if err := d.db.Close(); err != nil {
		return err
	}
	return stmtErr
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func isMemoryDSN(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file:")
}

func configurePragmas(ctx context.Context, db *sql.DB) error {
	const op = "sqlite.configurePragmas"

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA cache_size = -2000",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to set pragma: %s", pragma))
		}
	}

	return nil
}

func execSchema(ctx context.Context, db *sql.DB) error {
	const op = "sqlite.execSchema"

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Internal(op, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to execute schema statement: %s", stmt))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Internal(op, err, "failed to commit schema transaction")
	}

	return nil
}

// withRetry retries fn while sqlite reports lock contention.
func (d *DB) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for i := 0; i < d.config.MaxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return err
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return errors.Internal(op, ctx.Err(), "context cancelled")
		case <-time.After(d.config.RetryDelay * time.Duration(i+1)):
		}
	}
	return errors.Internal(op, lastErr, "max retries exceeded")
}

func isLockError(err error) bool {
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "busy")
}
