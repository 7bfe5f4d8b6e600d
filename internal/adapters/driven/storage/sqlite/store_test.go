package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// setupTestStore creates a store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "ruyi-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}
	return store, cleanup
}

func TestNewStore(t *testing.T) {
	t.Run("creates the database file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "data")

		store, err := NewStore(dir)
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, filepath.Join(dir, "metadata.db"), store.Path())
		assert.FileExists(t, store.Path())
	})

	t.Run("applies migrations", func(t *testing.T) {
		store, cleanup := setupTestStore(t)
		defer cleanup()

		version, err := store.Version()
		require.NoError(t, err)
		assert.Equal(t, 1, version)

		for _, table := range []string{"scheduled_tasks", "task_results"} {
			var name string
			err := store.db.QueryRow(
				"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
			).Scan(&name)
			require.NoError(t, err, table)
		}
	})

	t.Run("reopening does not rerun migrations", func(t *testing.T) {
		dir := t.TempDir()

		first, err := NewStore(dir)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second, err := NewStore(dir)
		require.NoError(t, err)
		defer second.Close()

		version, err := second.Version()
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("empty data directory", func(t *testing.T) {
		_, err := NewStore("")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unwritable data directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := NewStore(filepath.Join(file, "data"))

		assert.Error(t, err)
	})
}

func TestPendingMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"010_ten.up.sql":   {Data: []byte("")},
		"002_two.up.sql":   {Data: []byte("")},
		"001_one.up.sql":   {Data: []byte("")},
		"002_two.down.sql": {Data: []byte("")},
		"notes.up.sql":     {Data: []byte("")},
	}

	pending, err := pendingMigrations(fsys, 1)

	require.NoError(t, err)
	assert.Equal(t, []migration{{version: 2, name: "002_two.up.sql"}, {version: 10, name: "010_ten.up.sql"}}, pending)
}

func TestMigrate(t *testing.T) {
	t.Run("embedded migrations include the initial schema", func(t *testing.T) {
		_, err := migrationFiles.ReadFile("migrations/001_initial.up.sql")
		assert.NoError(t, err)
	})

	t.Run("skips files without a version prefix", func(t *testing.T) {
		store, cleanup := setupTestStore(t)
		defer cleanup()

		fsys := fstest.MapFS{
			"README.up.sql": {Data: []byte("this is not sql")},
		}

		assert.NoError(t, store.migrate(fsys))
	})

	t.Run("applies newer versions in order", func(t *testing.T) {
		store, cleanup := setupTestStore(t)
		defer cleanup()

		fsys := fstest.MapFS{
			"003_second.up.sql": {Data: []byte(
				"ALTER TABLE extra ADD COLUMN note TEXT;",
			)},
			"002_first.up.sql": {Data: []byte(
				"CREATE TABLE extra (id INTEGER);",
			)},
			"002_first.down.sql": {Data: []byte("DROP TABLE extra;")},
		}

		require.NoError(t, store.migrate(fsys))

		version, err := store.Version()
		require.NoError(t, err)
		assert.Equal(t, 3, version)
	})

	t.Run("reports a failing migration", func(t *testing.T) {
		store, cleanup := setupTestStore(t)
		defer cleanup()

		fsys := fstest.MapFS{
			"009_broken.up.sql": {Data: []byte("CREATE TABLE")},
		}

		err := store.migrate(fsys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "009_broken.up.sql")

		version, err := store.Version()
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})
}
