package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// keywordEntry is one indexed chunk with its lowercased terms.
type keywordEntry struct {
	chunk domain.Chunk
	terms map[string]int
}

// KeywordIndex is a term-frequency lexical index. A query term matches
// case-insensitively and the score is the total frequency of matched
// terms, so it approximates ranked keyword search without an engine.
// Path prefix filters resolve through the document store, like the
// SQLite adapter resolves them through a join.
type KeywordIndex struct {
	mu      sync.RWMutex
	docs    *DocumentStore
	entries map[string]keywordEntry
}

var _ driven.KeywordIndex = (*KeywordIndex)(nil)

// NewKeywordIndex creates an empty in-memory keyword index. docs may be
// nil, in which case path prefix filters match nothing.
func NewKeywordIndex(docs *DocumentStore) *KeywordIndex {
	return &KeywordIndex{
		docs:    docs,
		entries: make(map[string]keywordEntry),
	}
}

func (k *KeywordIndex) Index(ctx context.Context, chunks []domain.Chunk) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, chunk := range chunks {
		k.entries[chunk.ID] = keywordEntry{
			chunk: chunk,
			terms: termFrequencies(chunk.Content),
		}
	}
	return nil
}

func (k *KeywordIndex) Search(ctx context.Context, query string, topK int, filter driven.VectorFilter) ([]driven.KeywordHit, error) {
	queryTerms := strings.Fields(strings.ToLower(query))
	if len(queryTerms) == 0 {
		return nil, nil
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	var hits []driven.KeywordHit
	for _, entry := range k.entries {
		if filter.ScopeID != "" && entry.chunk.ScopeID != filter.ScopeID {
			continue
		}
		if filter.PathPrefix != "" && !k.matchesPathPrefix(ctx, entry.chunk.DocumentID, filter.PathPrefix) {
			continue
		}
		var score float64
		for _, term := range queryTerms {
			score += float64(entry.terms[term])
		}
		if score == 0 {
			continue
		}
		hits = append(hits, driven.KeywordHit{
			ChunkID:    entry.chunk.ID,
			DocumentID: entry.chunk.DocumentID,
			Score:      score,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (k *KeywordIndex) DeleteByDocument(ctx context.Context, documentID string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	for chunkID, entry := range k.entries {
		if entry.chunk.DocumentID == documentID {
			delete(k.entries, chunkID)
		}
	}
	return nil
}

func (k *KeywordIndex) Close() error {
	return nil
}

func (k *KeywordIndex) matchesPathPrefix(ctx context.Context, documentID, prefix string) bool {
	if k.docs == nil {
		return false
	}
	doc, err := k.docs.GetDocument(ctx, documentID)
	if err != nil {
		return false
	}
	return strings.HasPrefix(doc.Path, prefix)
}

// termFrequencies lowercases and splits content on non-letter,
// non-digit runes.
func termFrequencies(content string) map[string]int {
	terms := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !isWordRune(r)
	})
	freq := make(map[string]int, len(terms))
	for _, term := range terms {
		freq[term]++
	}
	return freq
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= '0' && r <= '9') ||
		r > 127
}
