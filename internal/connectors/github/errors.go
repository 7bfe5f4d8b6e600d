package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
)

var (
	// ErrRepoNotFound is returned for repositories that do not exist or
	// that the token cannot see. It matches domain.ErrNotFound.
	ErrRepoNotFound = fmt.Errorf("github: repository %w", domain.ErrNotFound)

	// ErrInvalidRepoName is returned for names not of the form owner/name.
	// It matches domain.ErrInvalidInput.
	ErrInvalidRepoName = fmt.Errorf("github: repository must be owner/name: %w", domain.ErrInvalidInput)
)

// RateLimitError is returned when GitHub refuses a request for quota.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError is a non-2xx GitHub response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s", e.StatusCode, e.Message)
}

func hasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports a missing or invisible repository.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports rejected or missing credentials.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsRateLimited reports an exhausted quota.
func IsRateLimited(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
