// Package sqlitedbtest opens throwaway migrated databases for tests.
package sqlitedbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// NewDB returns a migrated database in a temp dir, closed on cleanup.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlitedb.Open(sqlitedb.Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlitedb.Migrate(context.Background(), logger.NewDiscard(), db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// SeedUser inserts a bare user row so records referencing it satisfy the
// foreign keys.
func SeedUser(t *testing.T, db *sql.DB, userID string) {
	t.Helper()

	_, err := db.Exec(`INSERT INTO users (user_id, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, userID, userID+"@example.com", "hash", sqlitedb.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("seed user %s: %v", userID, err)
	}
}
