package driven

import "github.com/manglemix/ruyi-bot-3/internal/core/domain"

// DocumentSink receives events from the local file watcher.
// Implementations must never block the caller.
type DocumentSink interface {
	AddDocument(doc domain.Document)
	InvalidateDocument(id domain.DocumentID)
}

// GitDocumentSink receives events from the git synchronizer.
// A reset is ordered with the documents that follow it.
type GitDocumentSink interface {
	ResetGitIndex()
	AddGitDocument(doc domain.Document)
}

// MessageSink receives chat message events.
type MessageSink interface {
	AddMessage(msg domain.Message)
	InvalidateAuthor(author domain.AuthorID)
}
