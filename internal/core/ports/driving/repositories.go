package driving

import (
	"context"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// RepositoryService manages the repositories cloned into the gits directory.
type RepositoryService interface {
	// Add clones owner/name into the gits directory.
	// Returns domain.ErrAlreadyExists if a clone with that name exists.
	Add(ctx context.Context, fullName string) (*domain.Repository, error)

	// Available lists the remote repositories the configured token can access.
	Available(ctx context.Context) ([]domain.Repository, error)

	// Cloned lists the directory names of local clones, sorted.
	Cloned() ([]string, error)
}
