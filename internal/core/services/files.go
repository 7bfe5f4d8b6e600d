package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driving"
)

// Ensure FileBrowser implements the interface.
var _ driving.FileBrowser = (*FileBrowser)(nil)

// FilesPageSize is the number of entries per ListFiles page.
const FilesPageSize = 10

// FileBrowser reads and writes files in the watched file tree.
// Writes are picked up by the file watcher like any other change.
type FileBrowser struct {
	root string
}

// NewFileBrowser creates a browser rooted at root.
func NewFileBrowser(root string) *FileBrowser {
	return &FileBrowser{root: root}
}

// resolve maps a user-supplied relative path into the tree.
func (b *FileBrowser) resolve(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", fmt.Errorf("%w: empty filename", domain.ErrInvalidInput)
	}
	if strings.Contains(rel, "..") {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidInput, rel)
	}
	return filepath.Join(b.root, filepath.FromSlash(path.Clean("/"+rel))), nil
}

// ReadFile returns the contents of a file in the tree.
func (b *FileBrowser) ReadFile(rel string) ([]byte, error) {
	full, err := b.resolve(rel)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, rel)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a folder", domain.ErrInvalidInput, rel)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}

// WriteFile stores data in the tree, creating parent folders.
func (b *FileBrowser) WriteFile(rel string, data []byte) error {
	full, err := b.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create folder for %s: %w", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// ListFiles returns one page of files in breadth-first order.
// Within a folder, files are listed before the contents of its subfolders.
func (b *FileBrowser) ListFiles(page int) ([]string, error) {
	if page < 0 {
		return nil, fmt.Errorf("%w: negative page", domain.ErrInvalidInput)
	}

	skip := page * FilesPageSize
	out := make([]string, 0, FilesPageSize)
	queue := []string{""}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(filepath.Join(b.root, filepath.FromSlash(dir)))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", dir, err)
		}

		for _, entry := range entries {
			rel := path.Join(dir, entry.Name())
			if entry.IsDir() {
				queue = append(queue, rel)
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, rel)
			if len(out) == FilesPageSize {
				return out, nil
			}
		}
	}

	return out, nil
}
