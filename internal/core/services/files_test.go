package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(f), 0o644))
	}
}

func TestFileBrowser_ReadFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "notes.txt", "sub/deep.md")
	b := NewFileBrowser(root)

	data, err := b.ReadFile("sub/deep.md")
	require.NoError(t, err)
	assert.Equal(t, "sub/deep.md", string(data))

	_, err = b.ReadFile("../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.ReadFile("missing.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = b.ReadFile("sub")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = b.ReadFile("  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFileBrowser_WriteFile(t *testing.T) {
	root := t.TempDir()
	b := NewFileBrowser(root)

	require.NoError(t, b.WriteFile("new/dir/file.txt", []byte("saved")))

	data, err := os.ReadFile(filepath.Join(root, "new", "dir", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))

	assert.ErrorIs(t, b.WriteFile("a/../../escape.txt", nil), domain.ErrInvalidInput)
}

func TestFileBrowser_ListFiles(t *testing.T) {
	root := t.TempDir()
	files := []string{"a.txt", "b.txt", "z/deep/x.txt", "z/y.txt"}
	for i := 0; i < 12; i++ {
		files = append(files, filepath.ToSlash(filepath.Join("m", string(rune('a'+i))+".txt")))
	}
	writeTree(t, root, files...)
	b := NewFileBrowser(root)

	first, err := b.ListFiles(0)
	require.NoError(t, err)
	require.Len(t, first, FilesPageSize)
	// Top-level files come first, then each folder level in turn.
	assert.Equal(t, []string{"a.txt", "b.txt", "m/a.txt"}, first[:3])

	second, err := b.ListFiles(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"m/i.txt", "m/j.txt", "m/k.txt", "m/l.txt", "z/y.txt", "z/deep/x.txt"}, second)

	empty, err := b.ListFiles(5)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = b.ListFiles(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
