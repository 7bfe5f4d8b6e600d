package driving

// FileBrowser gives access to the watched file tree.
type FileBrowser interface {
	// ReadFile returns the contents of a file relative to the tree root.
	// Paths containing ".." are rejected with domain.ErrInvalidInput.
	ReadFile(rel string) ([]byte, error)

	// WriteFile stores data at a path relative to the tree root.
	WriteFile(rel string, data []byte) error

	// ListFiles returns one page of file paths in breadth-first order.
	// Pages are zero-based.
	ListFiles(page int) ([]string, error)
}
