package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/artplanner/schema"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Migrate applies schema/sqlitemigrations in order, recording each version
// and checksum in schema_migrations.
func Migrate(ctx context.Context, log *logger.Logger, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			checksum   TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	migrations, err := schema.Load(schema.SQLiteFS, schema.SQLiteDir)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		ran, err := apply(ctx, db, m)
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.Version, err)
		}
		if ran {
			log.InfoContext(ctx, "migration applied", "version", m.Version, "checksum", m.Checksum[:8])
		}
	}

	return nil
}

func apply(ctx context.Context, db *sql.DB, m schema.Migration) (bool, error) {
	var existing string
	err := db.QueryRowContext(ctx, "SELECT checksum FROM schema_migrations WHERE version = ?", m.Version).Scan(&existing)
	switch {
	case err == nil:
		return false, m.Verify(existing)
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("lookup migration: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return false, fmt.Errorf("execute migration: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, checksum, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Checksum, FormatTime(time.Now())); err != nil {
		return false, fmt.Errorf("record migration: %w", err)
	}

	return true, tx.Commit()
}
