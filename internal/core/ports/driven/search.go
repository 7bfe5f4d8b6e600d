package driven

import (
	"context"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// SearchBackend is the external full-text search service.
// Only the ingestion dispatcher calls it. Every method addresses an index
// by name; the backend creates indexes on first write.
type SearchBackend interface {
	// UpsertDocuments inserts or replaces documents keyed by ID.
	UpsertDocuments(ctx context.Context, index string, docs []domain.Document) error

	// DeleteDocument removes a single document by ID.
	// Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, index string, id domain.DocumentID) error

	// DeleteIndex drops a whole index.
	// Deleting a missing index is not an error.
	DeleteIndex(ctx context.Context, index string) error

	// UpsertMessages inserts or replaces chat messages keyed by ID.
	UpsertMessages(ctx context.Context, index string, msgs []domain.Message) error

	// DeleteMessagesByAuthor removes every message of author and waits
	// until the backend has applied the deletion.
	DeleteMessagesByAuthor(ctx context.Context, index string, author domain.AuthorID) error

	// EnsureFilterable marks attributes as filterable on index.
	EnsureFilterable(ctx context.Context, index string, attributes ...string) error
}
