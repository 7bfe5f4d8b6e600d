package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/manglemix/ruyi-bot-3/internal/core/domain"
	"github.com/manglemix/ruyi-bot-3/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.RepositoryHost = (*Client)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with rate limiting.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub client. An empty token makes anonymous requests.
func NewClient(ctx context.Context, token string) *Client {
	if token == "" {
		return &Client{
			gh:          gh.NewClient(&http.Client{Timeout: DefaultTimeout}),
			rateLimiter: NewRateLimiter(AnonymousRateLimit),
		}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		gh:          gh.NewClient(tc),
		rateLimiter: NewRateLimiter(AuthenticatedRateLimit),
	}
}

// NewClientWithHTTPClient creates a client that sends requests through
// httpClient. A non-empty baseURL replaces the public API endpoint.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github base url: %w", err)
		}
		client.BaseURL = u
	}
	return &Client{
		gh:          client,
		rateLimiter: NewRateLimiter(AuthenticatedRateLimit),
	}, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// GetRepository fetches a repository by its owner/name.
func (c *Client) GetRepository(ctx context.Context, fullName string) (*domain.Repository, error) {
	owner, name, err := SplitFullName(fullName)
	if err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		err = c.wrapError(err, "get repo")
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, fullName)
		}
		return nil, err
	}

	result := toDomain(repo)
	return &result, nil
}

// ListRepositories returns every repository the token can access.
// Archived and disabled repositories are left out. Without a token the
// list is empty.
func (c *Client) ListRepositories(ctx context.Context) ([]domain.Repository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Visibility:  "all",
		Affiliation: "owner,collaborator,organization_member",
		Sort:        "full_name",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var repos []domain.Repository
	for {
		if err := ctx.Err(); err != nil {
			return repos, err
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		page, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		c.updateRateLimitFromResponse(resp)
		if err != nil {
			err = c.wrapError(err, "list repos")
			if IsUnauthorized(err) {
				return nil, nil
			}
			return nil, err
		}

		for _, r := range page {
			if r.GetArchived() || r.GetDisabled() {
				continue
			}
			repos = append(repos, toDomain(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// SplitFullName splits owner/name.
func SplitFullName(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepoName, fullName)
	}
	return owner, name, nil
}

func toDomain(r *gh.Repository) domain.Repository {
	return domain.Repository{
		FullName:      r.GetFullName(),
		CloneURL:      r.GetCloneURL(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
	}
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{ResetAt: rateLimitErr.Rate.Reset.Time}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
