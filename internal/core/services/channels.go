package services

import (
	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
	"github.com/manglemix/ruyi-bot-3/internal/logger"
)

// Ensure Channels implements the sink interfaces.
var (
	_ driven.DocumentSink    = (*Channels)(nil)
	_ driven.GitDocumentSink = (*Channels)(nil)
	_ driven.MessageSink     = (*Channels)(nil)
)

// Channels is the ingestion stream. Producers push through the sink
// methods, which tag each event with its kind and append it to a single
// FIFO queue; the Dispatcher consumes that queue.
type Channels struct {
	Events *Queue[domain.Event]
}

// NewChannels creates the ingestion queue.
func NewChannels() *Channels {
	return &Channels{
		Events: NewQueue[domain.Event](),
	}
}

func (c *Channels) push(event domain.Event) {
	if !c.Events.Push(event) {
		logger.Warn("dropped %s event after shutdown", event.Kind)
	}
}

// AddDocument queues a local document for upsert.
func (c *Channels) AddDocument(doc domain.Document) {
	c.push(domain.Event{Kind: domain.EventAddDocument, Document: doc})
}

// InvalidateDocument queues a local document for removal.
func (c *Channels) InvalidateDocument(id domain.DocumentID) {
	c.push(domain.Event{Kind: domain.EventInvalidateDocument, DocumentID: id})
}

// ResetGitIndex queues a reset of the git index.
func (c *Channels) ResetGitIndex() {
	c.push(domain.Event{Kind: domain.EventResetGitIndex})
}

// AddGitDocument queues a git document for upsert.
func (c *Channels) AddGitDocument(doc domain.Document) {
	c.push(domain.Event{Kind: domain.EventAddGitDocument, Document: doc})
}

// AddMessage queues a chat message for upsert.
func (c *Channels) AddMessage(msg domain.Message) {
	c.push(domain.Event{Kind: domain.EventAddMessage, Message: msg})
}

// InvalidateAuthor queues removal of every message by author.
func (c *Channels) InvalidateAuthor(author domain.AuthorID) {
	c.push(domain.Event{Kind: domain.EventInvalidateAuthor, Author: author})
}

// Len returns the number of events not yet handed to the dispatcher.
func (c *Channels) Len() int {
	return c.Events.Len()
}

// Close closes the queue. The dispatcher drains what is left and returns.
func (c *Channels) Close() {
	c.Events.Close()
}
