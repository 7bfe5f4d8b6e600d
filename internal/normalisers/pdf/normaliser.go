// Package pdf extracts text from PDF files using the pdftotext tool
// from poppler.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// toolName is the external text extractor.
const toolName = "pdftotext"

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found in PATH", domain.ErrExtractToolNotFound)

// CheckAvailable reports whether pdftotext can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns a hint for installing pdftotext.
func InstallInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "pdftotext is required for PDF files. Install it with: brew install poppler"
	default:
		return "pdftotext is required for PDF files. Install it with: brew install poppler (macOS) " +
			"or sudo apt install poppler-utils (Debian/Ubuntu)"
	}
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner    driven.CommandRunner
	available func() error
}

// New creates a PDF normaliser using runner to execute pdftotext.
func New(runner driven.CommandRunner) *Normaliser {
	return &Normaliser{
		runner:    runner,
		available: CheckAvailable,
	}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"pdf"}
}

// Normalise reads the PDF at path and returns its text.
func (n *Normaliser) Normalise(ctx context.Context, path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return n.NormaliseBytes(ctx, content)
}

// NormaliseBytes returns the text of an in-memory PDF.
func (n *Normaliser) NormaliseBytes(ctx context.Context, content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("%w: empty pdf", domain.ErrInvalidInput)
	}
	if err := n.available(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "ruyi-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, "", toolName, "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(out), nil
}
