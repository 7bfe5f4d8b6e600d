package domain

// EventKind identifies what an ingestion event asks of the search backend.
type EventKind int

const (
	// EventAddDocument upserts a local document.
	EventAddDocument EventKind = iota

	// EventInvalidateDocument deletes a local document by ID.
	EventInvalidateDocument

	// EventResetGitIndex drops the whole git index before a re-sync.
	EventResetGitIndex

	// EventAddGitDocument upserts a git document.
	EventAddGitDocument

	// EventAddMessage upserts a chat message.
	EventAddMessage

	// EventInvalidateAuthor deletes every message of an author.
	EventInvalidateAuthor
)

// String returns the string representation.
func (k EventKind) String() string {
	switch k {
	case EventAddDocument:
		return "add-document"
	case EventInvalidateDocument:
		return "invalidate-document"
	case EventResetGitIndex:
		return "reset-git-index"
	case EventAddGitDocument:
		return "add-git-document"
	case EventAddMessage:
		return "add-message"
	case EventInvalidateAuthor:
		return "invalidate-author"
	default:
		return "unknown"
	}
}

// Event is one item on the ingestion stream. Only the field matching
// Kind is set. Every producer shares one stream, so events reach the
// backend in the order they were emitted.
type Event struct {
	Kind       EventKind
	Document   Document
	DocumentID DocumentID
	Message    Message
	Author     AuthorID
}
