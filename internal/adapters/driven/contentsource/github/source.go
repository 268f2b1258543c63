// Package github provides a content source that fetches files from
// GitHub repositories through the contents API.
//
// Logical paths take the form "owner/repo/path/to/file", optionally
// suffixed with "@ref" to pin a branch, tag, or commit.
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond keeps well inside the authenticated API
	// limit of 5000 requests per hour.
	DefaultRequestsPerSecond = 1
)

// Config holds configuration for the GitHub source.
type Config struct {
	// Token is a personal access token or OAuth token (required).
	Token string

	// BaseURL overrides the API endpoint for GitHub Enterprise. Optional.
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles API requests (default: 1).
	RequestsPerSecond float64
}

// Source fetches repository file contents from GitHub.
type Source struct {
	client  *gh.Client
	limiter *rate.Limiter
}

// New creates a GitHub content source.
func New(cfg Config) (*Source, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github: token is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = cfg.Timeout

	client := gh.NewClient(tc)
	if cfg.BaseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.BaseURL, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("github: invalid base URL %s: %w", cfg.BaseURL, err)
		}
	}

	return &Source{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// Fetch retrieves the file at the given repository path.
func (s *Source) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	loc, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: loc.ref}
	content, _, _, err := s.client.Repositories.GetContents(ctx, loc.owner, loc.repo, loc.filePath, opts)
	if err != nil {
		return nil, s.wrapError(err, path)
	}
	if content == nil {
		return nil, fmt.Errorf("%s is a directory, not a file: %w", path, domain.ErrInvalidInput)
	}

	decoded, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	// Files above the contents API size cap come back with empty
	// content and must be downloaded instead.
	if decoded == "" && content.GetSize() > 0 {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
		rc, _, err := s.client.Repositories.DownloadContents(ctx, loc.owner, loc.repo, loc.filePath, opts)
		if err != nil {
			return nil, s.wrapError(err, path)
		}
		return rc, nil
	}

	return io.NopCloser(strings.NewReader(decoded)), nil
}

// location is a parsed repository file reference.
type location struct {
	owner    string
	repo     string
	filePath string
	ref      string
}

// parsePath splits "owner/repo/path/to/file[@ref]" into its parts.
// A leading "github.com/" is tolerated.
func parsePath(path string) (location, error) {
	path = strings.TrimPrefix(path, "github.com/")
	path = strings.TrimPrefix(path, "/")

	var loc location
	if at := strings.LastIndex(path, "@"); at >= 0 {
		loc.ref = path[at+1:]
		path = path[:at]
	}

	parts := strings.SplitN(path, "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return location{}, fmt.Errorf("github path %q must be owner/repo/file: %w", path, domain.ErrInvalidInput)
	}

	loc.owner = parts[0]
	loc.repo = parts[1]
	loc.filePath = parts[2]
	return loc, nil
}

func (s *Source) wrapError(err error, path string) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil &&
		ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return fmt.Errorf("fetching %s: %w", path, err)
}
