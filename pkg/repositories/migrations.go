package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
)

//go:embed migrations
var migrationsFS embed.FS

// execer runs one migration script.
type execer func(ctx context.Context, statement string) error

// migrate runs every migration of a dialect in file name order.
func migrate(ctx context.Context, dialect string, exec execer) error {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationPath := path.Join(dir, entry.Name())
		migration, err := fs.ReadFile(migrationsFS, migrationPath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}

		if err := exec(ctx, string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", migrationPath, err)
		}
	}

	return nil
}
