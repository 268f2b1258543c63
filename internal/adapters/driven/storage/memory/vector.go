package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// VectorIndex is a brute-force cosine similarity index.
type VectorIndex struct {
	mu      sync.RWMutex
	dims    int
	entries map[string]domain.VectorEntry
}

var _ driven.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates an index that accepts vectors of the given
// dimensionality.
func NewVectorIndex(dims int) *VectorIndex {
	return &VectorIndex{
		dims:    dims,
		entries: make(map[string]domain.VectorEntry),
	}
}

func (v *VectorIndex) Upsert(ctx context.Context, entries []domain.VectorEntry) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, entry := range entries {
		if len(entry.Embedding) != v.dims {
			return fmt.Errorf("chunk %s has %d dimensions, index expects %d: %w",
				entry.ChunkID, len(entry.Embedding), v.dims, domain.ErrDimensionMismatch)
		}
	}
	for _, entry := range entries {
		v.entries[entry.ChunkID] = entry
	}
	return nil
}

func (v *VectorIndex) Search(ctx context.Context, query []float32, topK int, filter driven.VectorFilter) ([]driven.VectorHit, error) {
	if len(query) != v.dims {
		return nil, fmt.Errorf("query has %d dimensions, index expects %d: %w",
			len(query), v.dims, domain.ErrDimensionMismatch)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	var hits []driven.VectorHit
	for _, entry := range v.entries {
		if filter.ScopeID != "" && entry.ScopeID != filter.ScopeID {
			continue
		}
		if filter.PathPrefix != "" && !strings.HasPrefix(entry.Path, filter.PathPrefix) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    entry.ChunkID,
			DocumentID: entry.DocumentID,
			Similarity: clampUnit(cosine(query, entry.Embedding)),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (v *VectorIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for chunkID, entry := range v.entries {
		if entry.DocumentID == documentID {
			delete(v.entries, chunkID)
		}
	}
	return nil
}

func (v *VectorIndex) Close() error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
