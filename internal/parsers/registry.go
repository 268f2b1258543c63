// Package parsers provides document parser implementations and the
// registry that selects one by file extension or content type.
package parsers

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry maps file extensions and MIME types to parsers.
// Extension lookup wins over MIME lookup; the most recently registered
// parser wins a key. A parser registered via SetFallback handles
// anything nothing else claims.
type Registry struct {
	mu       sync.RWMutex
	byExt    map[string]driven.Parser
	byMIME   map[string]driven.Parser
	fallback driven.Parser
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt:  make(map[string]driven.Parser),
		byMIME: make(map[string]driven.Parser),
	}
}

// Register adds a parser under all its declared extensions and MIME types.
func (r *Registry) Register(p driven.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range p.Extensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
	for _, mt := range p.MIMETypes() {
		r.byMIME[strings.ToLower(mt)] = p
	}
}

// SetFallback sets the parser used when no extension or MIME type matches.
func (r *Registry) SetFallback(p driven.Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = p
}

// Resolve selects a parser for the file.
// Returns domain.ErrUnsupportedType when nothing matches and no fallback
// is set.
func (r *Registry) Resolve(fileName, contentType string) (driven.Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext != "" {
		if p, ok := r.byExt[ext]; ok {
			return p, nil
		}
	}

	if contentType != "" {
		// Strip parameters like "; charset=utf-8".
		mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		if p, ok := r.byMIME[mt]; ok {
			return p, nil
		}
	}

	if r.fallback != nil {
		return r.fallback, nil
	}

	return nil, fmt.Errorf("%w: no parser for %q (%s)", domain.ErrUnsupportedType, fileName, contentType)
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
