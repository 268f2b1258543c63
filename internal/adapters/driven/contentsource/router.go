// Package contentsource routes logical paths to the adapter that can
// fetch them.
package contentsource

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Compile-time port check.
var _ driven.ContentSource = (*Router)(nil)

// githubPrefix marks paths served by the GitHub source.
const githubPrefix = "github.com/"

// Router dispatches fetches by path shape: paths under github.com/ go
// to the GitHub source, everything else to the local source. The
// GitHub source is optional; github.com/ paths fail with a
// configuration error when it is absent.
type Router struct {
	local  driven.ContentSource
	github driven.ContentSource
}

// NewRouter creates a router over a required local source and an
// optional GitHub source.
func NewRouter(local, github driven.ContentSource) *Router {
	return &Router{local: local, github: github}
}

// Fetch opens the content at the given logical path.
func (r *Router) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, githubPrefix) {
		if r.github == nil {
			return nil, fmt.Errorf("%w: github source not configured, set github.token", domain.ErrInvalidInput)
		}
		return r.github.Fetch(ctx, path)
	}
	return r.local.Fetch(ctx, path)
}
