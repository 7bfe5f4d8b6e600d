package driven

import "context"

// Extractor turns a file on disk into plain text.
// ok is false when the file is skipped or could not be decoded; the
// extractor logs the reason itself.
type Extractor interface {
	Extract(path string) (text string, ok bool)
}

// Normaliser decodes one family of file formats.
type Normaliser interface {
	// Extensions returns the file extensions (without dot) this normaliser handles.
	Extensions() []string

	// Normalise returns the plain text of the file at path.
	Normalise(ctx context.Context, path string) (string, error)
}
