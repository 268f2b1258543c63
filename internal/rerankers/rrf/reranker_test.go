package rrf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
)

func hit(chunkID, source string) domain.SearchHit {
	return domain.SearchHit{
		ChunkID:    chunkID,
		DocumentID: "doc-1",
		Content:    "content of " + chunkID,
		Metadata:   map[string]string{domain.MetaHitSource: source},
	}
}

func TestRerank_Empty(t *testing.T) {
	reranker := New(DefaultK)

	results, err := reranker.Rerank(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRerank_TwoSourcesBeatOne(t *testing.T) {
	reranker := New(60)

	vector := []domain.SearchHit{hit("a", domain.HitSourceVector), hit("b", domain.HitSourceVector)}
	keyword := []domain.SearchHit{hit("b", domain.HitSourceKeyword), hit("c", domain.HitSourceKeyword)}

	results, err := reranker.Rerank(context.Background(), "query", [][]domain.SearchHit{vector, keyword})
	require.NoError(t, err)
	require.Len(t, results, 3)

	// b appears in both sources (ranks 2 and 1); it beats a, which leads
	// one source, and the top fused score normalises to 1.0.
	assert.Equal(t, "b", results[0].ChunkID)
	assert.Equal(t, "a", results[1].ChunkID)
	assert.Equal(t, "c", results[2].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	bRaw := 1.0/62 + 1.0/61
	assert.InDelta(t, (1.0/61)/bRaw, results[1].Score, 1e-9)
	assert.InDelta(t, (1.0/62)/bRaw, results[2].Score, 1e-9)
}

func TestRerank_TieBrokenByChunkID(t *testing.T) {
	reranker := New(60)

	sources := [][]domain.SearchHit{
		{hit("zulu", domain.HitSourceVector)},
		{hit("alpha", domain.HitSourceKeyword)},
	}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Both lead their source with the same fused score.
	assert.Equal(t, "alpha", results[0].ChunkID)
	assert.Equal(t, "zulu", results[1].ChunkID)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestRerank_MergesSourceTags(t *testing.T) {
	reranker := New(60)

	sources := [][]domain.SearchHit{
		{hit("a", domain.HitSourceVector)},
		{hit("a", domain.HitSourceKeyword)},
	}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "vector,keyword", results[0].Metadata[domain.MetaHitSource])
}

func TestRerank_DuplicateWithinSourceNotDoubleTagged(t *testing.T) {
	reranker := New(60)

	sources := [][]domain.SearchHit{
		{hit("a", domain.HitSourceVector), hit("a", domain.HitSourceVector)},
	}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, domain.HitSourceVector, results[0].Metadata[domain.MetaHitSource])
}

func TestRerank_DoesNotMutateInputMetadata(t *testing.T) {
	reranker := New(60)

	original := hit("a", domain.HitSourceVector)
	sources := [][]domain.SearchHit{
		{original},
		{hit("a", domain.HitSourceKeyword)},
	}

	_, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)

	assert.Equal(t, domain.HitSourceVector, original.Metadata[domain.MetaHitSource])
}

func TestRerank_CancelledContext(t *testing.T) {
	reranker := New(60)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reranker.Rerank(ctx, "query", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_NonPositiveKUsesDefault(t *testing.T) {
	reranker := New(0)
	assert.Equal(t, DefaultK, reranker.k)
}
