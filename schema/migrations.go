// Package schema contains embedded migration files.
package schema

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const (
	PostgresDir = "pgmigrations"
	SQLiteDir   = "sqlitemigrations"
)

// PostgresFS contains the SQL migration files for the pgx stores.
//
//go:embed pgmigrations/*.sql
var PostgresFS embed.FS

// SQLiteFS contains the SQL migration files for the sqlite stores.
//
//go:embed sqlitemigrations/*.sql
var SQLiteFS embed.FS

// Migration is one forward-only SQL file. Version is the file name.
type Migration struct {
	Version  string
	SQL      string
	Checksum string
}

// Load returns the .sql files under dir sorted by name, so numeric
// prefixes (001_, 002_) decide the order.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version:  name,
			SQL:      string(content),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}
	return migrations, nil
}

// Verify errors when an applied migration no longer matches its file.
func (m Migration) Verify(applied string) error {
	if applied != m.Checksum {
		return fmt.Errorf("checksum mismatch: migration %s was modified after being applied (applied %.8s, file %.8s)",
			m.Version, applied, m.Checksum)
	}
	return nil
}
