package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate executes the <name>.up.sql files of migrationsDir in lexical order,
// or the <name>.down.sql files in reverse order.
func Migrate(ctx context.Context, db *sql.DB, migrationsDir string, direction Direction) error {
	files, err := migrationFiles(migrationsDir, direction)
	if err != nil {
		return err
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		log.Printf("Applying migration: %s", name)
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationFiles(migrationsDir string, direction Direction) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	suffix := "." + string(direction) + ".sql"
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, entry.Name())
	}

	sort.Strings(files)
	if direction == Down {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}
