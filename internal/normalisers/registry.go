package normalisers

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
	"github.com/manglemix/ruyi-bot-3/internal/normalisers/docx"
	"github.com/manglemix/ruyi-bot-3/internal/normalisers/pdf"
	"github.com/manglemix/ruyi-bot-3/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.Extractor = (*Registry)(nil)

// SkippedExtensions are known non-text formats. Files with these
// extensions, or with no extension at all, are skipped without logging.
var SkippedExtensions = []string{
	"gitignore", "lock", "obj", "mtl", "png", "a", "stl",
	"jpg", "jpeg", "gif", "ico", "o", "so", "exe", "bin", "zip", "gz", "tar",
}

// Registry selects a normaliser by case-sensitive file extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]driven.Normaliser
	skip  map[string]struct{}
}

// NewRegistry creates a registry with the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{
		byExt: make(map[string]driven.Normaliser),
		skip:  make(map[string]struct{}, len(SkippedExtensions)),
	}
	for _, ext := range SkippedExtensions {
		r.skip[ext] = struct{}{}
	}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// Default returns a registry with the plain text, PDF and DOCX normalisers.
// runner executes pdftotext.
func Default(runner driven.CommandRunner) *Registry {
	return NewRegistry(
		plaintext.New(),
		pdf.New(runner),
		docx.New(),
	)
}

// Register adds n for each of its extensions, replacing earlier registrations.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range n.Extensions() {
		r.byExt[ext] = n
	}
}

// SupportedExtensions returns every extension with a normaliser, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract returns the text of the file at path.
func (r *Registry) Extract(path string) (string, bool) {
	ext := extension(path)
	if ext == "" {
		return "", false
	}

	r.mu.RLock()
	n, ok := r.byExt[ext]
	_, skipped := r.skip[ext]
	r.mu.RUnlock()

	if !ok {
		if !skipped {
			logger.Warn("unknown file extension %s for %s", ext, path)
		}
		return "", false
	}

	text, err := n.Normalise(context.Background(), path)
	if err != nil {
		logger.Error("failed to read %s: %v", path, err)
		return "", false
	}
	return text, true
}

// extension returns the extension of path without the dot.
func extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
