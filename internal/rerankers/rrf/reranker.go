// Package rrf implements reciprocal rank fusion across retrieval sources.
package rrf

import (
	"context"
	"sort"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// DefaultK is the standard RRF smoothing constant.
const DefaultK = 60

// Ensure Reranker implements the port.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker fuses ranked lists by reciprocal rank: each source
// contributes 1/(k+rank) per hit, ranks are 1-indexed, and a chunk
// appearing in several sources accumulates the contributions. Fused
// scores are normalised by the maximum so the top hit scores 1.0.
type Reranker struct {
	k int
}

// New creates an RRF reranker with the given smoothing constant.
func New(k int) *Reranker {
	if k <= 0 {
		k = DefaultK
	}
	return &Reranker{k: k}
}

// Name returns the reranker name.
func (r *Reranker) Name() string {
	return domain.RerankerRRF
}

// Rerank fuses the per-source candidate lists. The query is unused;
// fusion depends only on ranks.
func (r *Reranker) Rerank(ctx context.Context, _ string, sources [][]domain.SearchHit) ([]domain.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fused := make(map[string]*domain.SearchHit)
	for _, hits := range sources {
		for i, hit := range hits {
			contribution := 1.0 / float64(r.k+i+1)

			existing, ok := fused[hit.ChunkID]
			if !ok {
				merged := hit
				merged.Score = contribution
				fused[hit.ChunkID] = &merged
				continue
			}
			existing.Score += contribution
			mergeSource(existing, hit)
		}
	}
	if len(fused) == 0 {
		return nil, nil
	}

	results := make([]domain.SearchHit, 0, len(fused))
	maxScore := 0.0
	for _, hit := range fused {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
		results = append(results, *hit)
	}
	for i := range results {
		results[i].Score /= maxScore
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	return results, nil
}

// mergeSource appends the duplicate hit's retrieval source tag so a
// fused hit records every source that surfaced it. The metadata map is
// copied before mutation; it may be shared with the caller's hit.
func mergeSource(existing *domain.SearchHit, duplicate domain.SearchHit) {
	src := duplicate.Metadata[domain.MetaHitSource]
	if src == "" {
		return
	}
	have := existing.Metadata[domain.MetaHitSource]
	for _, part := range strings.Split(have, ",") {
		if part == src {
			return
		}
	}

	meta := make(map[string]string, len(existing.Metadata)+1)
	for k, v := range existing.Metadata {
		meta[k] = v
	}
	if have == "" {
		meta[domain.MetaHitSource] = src
	} else {
		meta[domain.MetaHitSource] = have + "," + src
	}
	existing.Metadata = meta
}
