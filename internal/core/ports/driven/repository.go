package driven

import (
	"context"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

// RepositoryHost lists repositories on a remote git host.
type RepositoryHost interface {
	// GetRepository looks up a repository by "owner/name".
	// Returns domain.ErrNotFound if it does not exist or is not visible.
	GetRepository(ctx context.Context, fullName string) (*domain.Repository, error)

	// ListRepositories returns every repository the credentials can access.
	ListRepositories(ctx context.Context) ([]domain.Repository, error)
}
