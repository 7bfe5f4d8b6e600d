package driven

import "github.com/manglemix/ruyi-bot-3/internal/core/domain"

// OptInStore persists the set of chat authors whose messages are indexed.
type OptInStore interface {
	// Load returns the persisted set. A missing store yields an empty set.
	Load() ([]domain.AuthorID, error)

	// Save replaces the persisted set.
	Save(authors []domain.AuthorID) error
}
