package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists indicates an entity that is already present.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnsupportedType indicates a file extension no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a git sync is already running or cooling down.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSearchUnavailable indicates the search backend is not configured.
	ErrSearchUnavailable = errors.New("search backend unavailable")

	// Provenance Errors.

	// ErrMalformedRoot indicates a provenance string with no known scheme.
	ErrMalformedRoot = errors.New("malformed root")

	// ErrOutsideBase indicates a path that does not live under its source base.
	ErrOutsideBase = errors.New("path outside base directory")

	// Extraction Errors.

	// ErrExtractToolNotFound indicates an external extraction tool is missing.
	ErrExtractToolNotFound = errors.New("extraction tool not found")
)
