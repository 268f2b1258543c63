// Package filesystem provides a content source backed by the local
// filesystem.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.ContentSource = (*Source)(nil)

// Source fetches file contents from the local filesystem. An optional
// root confines fetches to one directory tree.
type Source struct {
	root string
}

// New creates a filesystem source. root may be empty, in which case
// any absolute path can be fetched.
func New(root string) *Source {
	return &Source{root: root}
}

// Fetch opens the file at the given logical path. file:// URIs and
// bare paths are both accepted.
func (s *Source) Fetch(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}

	return file, nil
}

// resolve strips file:// URIs, roots relative paths, and rejects
// escapes from the configured root.
func (s *Source) resolve(path string) (string, error) {
	path = strings.TrimPrefix(path, "file://")
	if path == "" {
		return "", fmt.Errorf("empty path: %w", domain.ErrInvalidInput)
	}

	if s.root == "" {
		return path, nil
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes source root: %w", path, domain.ErrInvalidInput)
	}
	return path, nil
}
