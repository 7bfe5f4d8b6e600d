// Package meili implements the search backend on Meilisearch.
package meili

import (
	"context"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.SearchBackend = (*Backend)(nil)

// primaryKey is the document attribute Meilisearch keys on.
const primaryKey = "id"

// defaultPollInterval is how often task status is polled while waiting.
const defaultPollInterval = 50 * time.Millisecond

// Backend writes documents and messages to a Meilisearch server.
// Writes are enqueued as Meilisearch tasks, which the server applies
// in enqueue order.
type Backend struct {
	client       meilisearch.ServiceManager
	pollInterval time.Duration
}

// New connects to the server at url. apiKey may be empty.
func New(url, apiKey string) *Backend {
	var opts []meilisearch.Option
	if apiKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(apiKey))
	}
	return &Backend{
		client:       meilisearch.New(url, opts...),
		pollInterval: defaultPollInterval,
	}
}

// Ping reports whether the server is reachable and healthy.
func (b *Backend) Ping(ctx context.Context) error {
	health, err := b.client.HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	if health.Status != "available" {
		return fmt.Errorf("%w: status %s", domain.ErrSearchUnavailable, health.Status)
	}
	return nil
}

// UpsertDocuments inserts or replaces documents keyed by ID.
func (b *Backend) UpsertDocuments(ctx context.Context, index string, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := b.client.Index(index).AddDocumentsWithContext(ctx, docs, primaryKey); err != nil {
		return fmt.Errorf("add documents to %s: %w", index, err)
	}
	return nil
}

// DeleteDocument removes a single document by ID.
func (b *Backend) DeleteDocument(ctx context.Context, index string, id domain.DocumentID) error {
	if _, err := b.client.Index(index).DeleteDocumentWithContext(ctx, id.String()); err != nil {
		return fmt.Errorf("delete document %s from %s: %w", id, index, err)
	}
	return nil
}

// DeleteIndex drops a whole index.
func (b *Backend) DeleteIndex(ctx context.Context, index string) error {
	if _, err := b.client.DeleteIndexWithContext(ctx, index); err != nil {
		return fmt.Errorf("delete index %s: %w", index, err)
	}
	return nil
}

// UpsertMessages inserts or replaces chat messages keyed by ID.
func (b *Backend) UpsertMessages(ctx context.Context, index string, msgs []domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if _, err := b.client.Index(index).AddDocumentsWithContext(ctx, msgs, primaryKey); err != nil {
		return fmt.Errorf("add messages to %s: %w", index, err)
	}
	return nil
}

// DeleteMessagesByAuthor removes every message of author and waits for
// the deletion task to finish.
func (b *Backend) DeleteMessagesByAuthor(ctx context.Context, index string, author domain.AuthorID) error {
	filter := fmt.Sprintf("author_id = %d", author)

	info, err := b.client.Index(index).DeleteDocumentsByFilterWithContext(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete messages of %d from %s: %w", author, index, err)
	}

	task, err := b.client.WaitForTaskWithContext(ctx, info.TaskUID, b.pollInterval)
	if err != nil {
		return fmt.Errorf("wait for task %d: %w", info.TaskUID, err)
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("task %d finished with status %s", info.TaskUID, task.Status)
	}
	return nil
}

// EnsureFilterable marks attributes as filterable on index.
func (b *Backend) EnsureFilterable(ctx context.Context, index string, attributes ...string) error {
	attrs := append([]string(nil), attributes...)
	if _, err := b.client.Index(index).UpdateFilterableAttributesWithContext(ctx, &attrs); err != nil {
		return fmt.Errorf("update filterable attributes of %s: %w", index, err)
	}
	return nil
}
