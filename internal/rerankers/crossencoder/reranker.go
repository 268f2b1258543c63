// Package crossencoder implements reranking by a joint query-candidate
// relevance model.
package crossencoder

import (
	"context"
	"sort"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/logger"
)

// Ensure Reranker implements the port.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker re-scores every candidate with a relevance scorer that sees
// the query and the candidate text together. Scorer failures on a pair
// are logged and leave that hit's retrieval score in place, so a flaky
// scoring backend degrades rather than fails the whole search.
type Reranker struct {
	scorer driven.RelevanceScorer
}

// New creates a cross-encoder reranker backed by the given scorer.
func New(scorer driven.RelevanceScorer) *Reranker {
	return &Reranker{scorer: scorer}
}

// Name returns the reranker name.
func (r *Reranker) Name() string {
	return domain.RerankerCrossEncoder
}

// Rerank scores each unique candidate against the query. Duplicates by
// chunk id keep the higher retrieval score before re-scoring.
func (r *Reranker) Rerank(ctx context.Context, query string, sources [][]domain.SearchHit) ([]domain.SearchHit, error) {
	unique := make(map[string]domain.SearchHit)
	for _, hits := range sources {
		for _, hit := range hits {
			if existing, ok := unique[hit.ChunkID]; !ok || hit.Score > existing.Score {
				unique[hit.ChunkID] = hit
			}
		}
	}
	if len(unique) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchHit, 0, len(unique))
	for _, hit := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, err := r.scorer.Score(ctx, query, hit.Content)
		if err != nil {
			logger.Debug("relevance scoring failed for chunk %s: %v", hit.ChunkID, err)
			results = append(results, hit)
			continue
		}

		hit.Score = clamp01(score / 10.0)
		results = append(results, hit)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	return results, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
