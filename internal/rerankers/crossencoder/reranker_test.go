package crossencoder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// scriptedScorer returns per-candidate scores and can fail selected pairs.
type scriptedScorer struct {
	scores  map[string]float64
	failing map[string]error
	calls   int
}

func (s *scriptedScorer) Score(_ context.Context, _, candidate string) (float64, error) {
	s.calls++
	if err, ok := s.failing[candidate]; ok {
		return 0, err
	}
	return s.scores[candidate], nil
}

func (s *scriptedScorer) Close() error { return nil }

func searchHit(chunkID, content string, score float64) domain.SearchHit {
	return domain.SearchHit{ChunkID: chunkID, Content: content, Score: score}
}

func TestRerank_Empty(t *testing.T) {
	reranker := New(&scriptedScorer{})

	results, err := reranker.Rerank(context.Background(), "query", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRerank_RescoresAndSorts(t *testing.T) {
	scorer := &scriptedScorer{scores: map[string]float64{
		"weak match":   2.0,
		"strong match": 9.0,
	}}
	reranker := New(scorer)

	sources := [][]domain.SearchHit{{
		searchHit("a", "weak match", 0.9),
		searchHit("b", "strong match", 0.3),
	}}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The joint scorer overrules retrieval order.
	assert.Equal(t, "b", results[0].ChunkID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, "a", results[1].ChunkID)
	assert.InDelta(t, 0.2, results[1].Score, 1e-9)
}

func TestRerank_ScorerFailureKeepsRetrievalScore(t *testing.T) {
	scorer := &scriptedScorer{
		scores:  map[string]float64{"good": 8.0},
		failing: map[string]error{"flaky": errors.New("model timeout")},
	}
	reranker := New(scorer)

	sources := [][]domain.SearchHit{{
		searchHit("a", "flaky", 0.95),
		searchHit("b", "good", 0.1),
	}}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "a", results[0].ChunkID)
	assert.InDelta(t, 0.95, results[0].Score, 1e-9)
	assert.Equal(t, "b", results[1].ChunkID)
	assert.InDelta(t, 0.8, results[1].Score, 1e-9)
}

func TestRerank_DuplicatesScoredOnce(t *testing.T) {
	scorer := &scriptedScorer{scores: map[string]float64{"text": 5.0}}
	reranker := New(scorer)

	sources := [][]domain.SearchHit{
		{searchHit("a", "text", 0.4)},
		{searchHit("a", "text", 0.7)},
	}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, scorer.calls)
}

func TestRerank_ScoreClampedToUnitRange(t *testing.T) {
	scorer := &scriptedScorer{scores: map[string]float64{
		"over":  14.0,
		"under": -3.0,
	}}
	reranker := New(scorer)

	sources := [][]domain.SearchHit{{
		searchHit("a", "over", 0.5),
		searchHit("b", "under", 0.5),
	}}

	results, err := reranker.Rerank(context.Background(), "query", sources)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestRerank_CancelledContext(t *testing.T) {
	reranker := New(&scriptedScorer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reranker.Rerank(ctx, "query", [][]domain.SearchHit{{searchHit("a", "text", 0.5)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestName(t *testing.T) {
	assert.Equal(t, domain.RerankerCrossEncoder, New(&scriptedScorer{}).Name())
}
