package file

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure OptInStore implements the interface.
var _ driven.OptInStore = (*OptInStore)(nil)

// OptInStore persists opted-in author ids, one decimal id per line.
type OptInStore struct {
	mu   sync.Mutex
	path string
}

// NewOptInStore creates a store backed by the file at path.
func NewOptInStore(path string) *OptInStore {
	return &OptInStore{path: path}
}

// Path returns the opt-in file path.
func (s *OptInStore) Path() string {
	return s.path
}

// Load reads the set. A missing file is an empty set; blank lines are
// ignored and malformed lines are logged and skipped.
func (s *OptInStore) Load() ([]domain.AuthorID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read opt-in file: %w", err)
	}

	var authors []domain.AuthorID
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		id, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			logger.Warn("%s:%d: ignoring malformed author id %q", s.path, line, text)
			continue
		}
		authors = append(authors, domain.AuthorID(id))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read opt-in file: %w", err)
	}
	return authors, nil
}

// Save replaces the file contents with authors. The file is written to
// a temporary sibling and renamed into place.
func (s *OptInStore) Save(authors []domain.AuthorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	for _, id := range authors {
		buf.WriteString(strconv.FormatUint(uint64(id), 10))
		buf.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create opt-in directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".opt-in-*")
	if err != nil {
		return fmt.Errorf("write opt-in file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write opt-in file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write opt-in file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write opt-in file: %w", err)
	}
	return nil
}
