// Package memory provides an in-memory search backend for tests and
// for running without a search server.
package memory

import (
	"context"
	"sync"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.SearchBackend = (*Backend)(nil)

// Op names recorded by Backend.
const (
	OpUpsertDocument = "upsert-document"
	OpDeleteDocument = "delete-document"
	OpDeleteIndex    = "delete-index"
	OpUpsertMessage  = "upsert-message"
	OpDeleteAuthor   = "delete-author"
	OpFilterable     = "filterable"
)

// Call is one recorded backend operation.
type Call struct {
	Op    string
	Index string
	Key   string
}

// Backend stores documents and messages in maps keyed by index and ID.
type Backend struct {
	mu         sync.Mutex
	documents  map[string]map[domain.DocumentID]domain.Document
	messages   map[string]map[string]domain.Message
	filterable map[string][]string
	calls      []Call
	failOps    map[string]error
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{
		documents:  make(map[string]map[domain.DocumentID]domain.Document),
		messages:   make(map[string]map[string]domain.Message),
		filterable: make(map[string][]string),
		failOps:    make(map[string]error),
	}
}

// FailOn makes every later operation named op return err.
func (b *Backend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOps[op] = err
}

func (b *Backend) record(op, index, key string) error {
	b.calls = append(b.calls, Call{Op: op, Index: index, Key: key})
	return b.failOps[op]
}

// UpsertDocuments inserts or replaces documents keyed by ID.
func (b *Backend) UpsertDocuments(_ context.Context, index string, docs []domain.Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, doc := range docs {
		if err := b.record(OpUpsertDocument, index, doc.ID.String()); err != nil {
			return err
		}
		if b.documents[index] == nil {
			b.documents[index] = make(map[domain.DocumentID]domain.Document)
		}
		b.documents[index][doc.ID] = doc
	}
	return nil
}

// DeleteDocument removes a single document by ID.
func (b *Backend) DeleteDocument(_ context.Context, index string, id domain.DocumentID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(OpDeleteDocument, index, id.String()); err != nil {
		return err
	}
	delete(b.documents[index], id)
	return nil
}

// DeleteIndex drops a whole index.
func (b *Backend) DeleteIndex(_ context.Context, index string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(OpDeleteIndex, index, ""); err != nil {
		return err
	}
	delete(b.documents, index)
	delete(b.messages, index)
	return nil
}

// UpsertMessages inserts or replaces chat messages keyed by ID.
func (b *Backend) UpsertMessages(_ context.Context, index string, msgs []domain.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, msg := range msgs {
		if err := b.record(OpUpsertMessage, index, msg.ID); err != nil {
			return err
		}
		if b.messages[index] == nil {
			b.messages[index] = make(map[string]domain.Message)
		}
		b.messages[index][msg.ID] = msg
	}
	return nil
}

// DeleteMessagesByAuthor removes every message of author.
func (b *Backend) DeleteMessagesByAuthor(_ context.Context, index string, author domain.AuthorID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(OpDeleteAuthor, index, ""); err != nil {
		return err
	}
	for id, msg := range b.messages[index] {
		if msg.AuthorID == author {
			delete(b.messages[index], id)
		}
	}
	return nil
}

// EnsureFilterable records the filterable attributes of index.
func (b *Backend) EnsureFilterable(_ context.Context, index string, attributes ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.record(OpFilterable, index, ""); err != nil {
		return err
	}
	b.filterable[index] = append([]string(nil), attributes...)
	return nil
}

// Documents returns the documents of index.
func (b *Backend) Documents(index string) map[domain.DocumentID]domain.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[domain.DocumentID]domain.Document, len(b.documents[index]))
	for id, doc := range b.documents[index] {
		out[id] = doc
	}
	return out
}

// Messages returns the messages of index.
func (b *Backend) Messages(index string) map[string]domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.Message, len(b.messages[index]))
	for id, msg := range b.messages[index] {
		out[id] = msg
	}
	return out
}

// Filterable returns the filterable attributes of index.
func (b *Backend) Filterable(index string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.filterable[index]...)
}

// Calls returns every recorded operation in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}
