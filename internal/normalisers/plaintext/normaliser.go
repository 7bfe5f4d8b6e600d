// Package plaintext reads source code and other text files verbatim.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{
		"txt", "md", "rs", "py", "toml", "json", "cpp", "bazel", "ron",
		"xml", "h", "jsonc", "hpp", "sql", "c", "go", "yaml", "yml",
		"html", "css", "js", "ts", "sh",
	}
}

// Normalise returns the file contents. Files that are not valid UTF-8 are rejected.
func (n *Normaliser) Normalise(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrInvalidInput, path)
	}
	return string(data), nil
}
