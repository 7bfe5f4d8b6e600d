package driving

import "github.com/manglemix/ruyi-bot-3/internal/core/domain"

// MessageService decides which chat messages are indexed.
type MessageService interface {
	// Observe indexes body if author is opted in or is the bot itself.
	// Returns whether the message was indexed.
	Observe(author domain.AuthorID, body string) bool

	// OptIn adds author to the opt-in set and persists it.
	OptIn(author domain.AuthorID) error

	// OptOut removes author from the set, persists it, and removes every
	// indexed message of that author.
	OptOut(author domain.AuthorID) error

	// IsOptedIn reports whether author is in the opt-in set.
	IsOptedIn(author domain.AuthorID) bool

	// OptedIn returns the opt-in set in ascending order.
	OptedIn() []domain.AuthorID
}
