package driven

import (
	"context"
	"io"
)

// ContentSource fetches raw bytes for a logical path.
// The returned reader may be non-seekable (network streams); the core
// buffers such sources fully before hashing and parsing, which both
// require re-reading the same bytes.
type ContentSource interface {
	// Fetch opens the content at the given logical path.
	// Returns domain.ErrNotFound if the path does not exist.
	Fetch(ctx context.Context, path string) (io.ReadCloser, error)
}
