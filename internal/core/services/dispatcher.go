package services

import (
	"context"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Dispatcher is the only component that writes to the search backend.
// It consumes the single ingestion stream one event at a time, so writes
// are applied in the order producers emitted them, whatever their kind.
// Backend failures are logged and the event is dropped.
type Dispatcher struct {
	backend  driven.SearchBackend
	channels *Channels
	indexes  domain.SearchSettings
}

// NewDispatcher creates a dispatcher writing to the indexes named in settings.
func NewDispatcher(backend driven.SearchBackend, channels *Channels, settings domain.SearchSettings) *Dispatcher {
	return &Dispatcher{
		backend:  backend,
		channels: channels,
		indexes:  settings,
	}
}

// Prepare configures the backend before events are consumed.
func (d *Dispatcher) Prepare(ctx context.Context) {
	if err := d.backend.EnsureFilterable(ctx, d.indexes.MessagesIndex, "author_id"); err != nil {
		logger.Error("failed to make author_id filterable on %s: %v", d.indexes.MessagesIndex, err)
	}
}

// Run consumes events until the stream is closed and drained, or ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	events := d.channels.Events.Out()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-events:
			if !ok {
				logger.Debug("dispatcher: ingestion stream drained")
				return nil
			}
			d.handle(ctx, event)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event domain.Event) {
	switch event.Kind {
	case domain.EventAddDocument:
		d.upsertDocument(ctx, d.indexes.DocumentsIndex, event.Document)
	case domain.EventInvalidateDocument:
		d.deleteDocument(ctx, event.DocumentID)
	case domain.EventResetGitIndex:
		d.resetGitIndex(ctx)
	case domain.EventAddGitDocument:
		d.upsertDocument(ctx, d.indexes.GitIndex, event.Document)
	case domain.EventAddMessage:
		d.upsertMessage(ctx, event.Message)
	case domain.EventInvalidateAuthor:
		d.deleteAuthor(ctx, event.Author)
	default:
		logger.Warn("unknown ingestion event kind %d", event.Kind)
	}
}

func (d *Dispatcher) upsertDocument(ctx context.Context, index string, doc domain.Document) {
	if err := d.backend.UpsertDocuments(ctx, index, []domain.Document{doc}); err != nil {
		logger.Error("failed to add %s (%s) to %s: %v", doc.Filename, doc.ID, index, err)
		return
	}
	logger.Debug("indexed %s%s into %s", doc.Root, doc.Filename, index)
}

func (d *Dispatcher) deleteDocument(ctx context.Context, id domain.DocumentID) {
	if err := d.backend.DeleteDocument(ctx, d.indexes.DocumentsIndex, id); err != nil {
		logger.Error("failed to delete document %s: %v", id, err)
		return
	}
	logger.Debug("deleted document %s", id)
}

func (d *Dispatcher) resetGitIndex(ctx context.Context) {
	if err := d.backend.DeleteIndex(ctx, d.indexes.GitIndex); err != nil {
		logger.Error("failed to reset git index %s: %v", d.indexes.GitIndex, err)
		return
	}
	logger.Info("reset git index %s", d.indexes.GitIndex)
}

func (d *Dispatcher) upsertMessage(ctx context.Context, msg domain.Message) {
	if err := d.backend.UpsertMessages(ctx, d.indexes.MessagesIndex, []domain.Message{msg}); err != nil {
		logger.Error("failed to add message %s by %d: %v", msg.ID, msg.AuthorID, err)
	}
}

func (d *Dispatcher) deleteAuthor(ctx context.Context, author domain.AuthorID) {
	if err := d.backend.DeleteMessagesByAuthor(ctx, d.indexes.MessagesIndex, author); err != nil {
		logger.Error("failed to delete messages of author %d: %v", author, err)
		return
	}
	logger.Info("deleted messages of author %d", author)
}
