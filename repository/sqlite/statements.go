package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nijaru/summora/errors"
)

const (
	upsertCacheQuery = `
        INSERT INTO summary_cache (key, summary, timestamp)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            summary = excluded.summary,
            timestamp = excluded.timestamp
    `

	getCacheQuery = `
        SELECT summary, timestamp FROM summary_cache WHERE key = ?
    `

	deleteCacheQuery = `
        DELETE FROM summary_cache WHERE key = ?
    `

	upsertSettingQuery = `
        INSERT INTO settings (key, value, updated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            updated_at = excluded.updated_at
    `

	listSettingsQuery = `
        SELECT key, value FROM settings
    `
)

type PreparedStatements struct {
	upsertCache   *sql.Stmt
	getCache      *sql.Stmt
	deleteCache   *sql.Stmt
	upsertSetting *sql.Stmt
	listSettings  *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	var err error

	if stmts.upsertCache, err = db.PrepareContext(ctx, upsertCacheQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare cache upsert statement")
	}

	if stmts.getCache, err = db.PrepareContext(ctx, getCacheQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare cache get statement")
	}

	if stmts.deleteCache, err = db.PrepareContext(ctx, deleteCacheQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare cache delete statement")
	}

	if stmts.upsertSetting, err = db.PrepareContext(ctx, upsertSettingQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare settings upsert statement")
	}

	if stmts.listSettings, err = db.PrepareContext(ctx, listSettingsQuery); err != nil {
		return errors.Internal(op, err, "failed to prepare settings list statement")
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	statements := [...]*sql.Stmt{
		stmts.upsertCache,
		stmts.getCache,
		stmts.deleteCache,
		stmts.upsertSetting,
		stmts.listSettings,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}
