package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationFiles(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	for _, name := range []string{
		"0002_indexes.up.sql",
		"0001_init.up.sql",
		"0001_init.down.sql",
		"0002_indexes.down.sql",
		"README.md",
	} {
		req.NoError(os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
	req.NoError(os.Mkdir(filepath.Join(dir, "0003_nested.up.sql"), 0o755))

	up, err := migrationFiles(dir, Up)
	req.NoError(err)
	req.Equal([]string{"0001_init.up.sql", "0002_indexes.up.sql"}, up)

	down, err := migrationFiles(dir, Down)
	req.NoError(err)
	req.Equal([]string{"0002_indexes.down.sql", "0001_init.down.sql"}, down)
}

func TestMigrationFiles_MissingDirectory(t *testing.T) {
	_, err := migrationFiles(filepath.Join(t.TempDir(), "missing"), Up)
	require.Error(t, err)
}
