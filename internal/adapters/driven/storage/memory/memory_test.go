package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

func TestDocumentStore_InsertDuplicate(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", ScopeID: "scope-a", Path: "/a.txt"}
	require.NoError(t, store.InsertDocument(ctx, doc))
	assert.Error(t, store.InsertDocument(ctx, doc))
}

func TestDocumentStore_UpdateMissing(t *testing.T) {
	store := NewDocumentStore()

	err := store.UpdateDocument(context.Background(), &domain.Document{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListSortedAndFiltered(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, &domain.Document{ID: "doc-2", ScopeID: "scope-a", Path: "/b.txt"}))
	require.NoError(t, store.InsertDocument(ctx, &domain.Document{ID: "doc-1", ScopeID: "scope-a", Path: "/a.txt"}))
	require.NoError(t, store.InsertDocument(ctx, &domain.Document{ID: "doc-3", ScopeID: "scope-b", Path: "/a.txt"}))

	docs, err := store.ListDocuments(ctx, "scope-a", "")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "doc-2", docs[1].ID)

	docs, err = store.ListDocuments(ctx, "scope-a", "/b")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-2", docs[0].ID)
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.InsertDocument(ctx, &domain.Document{ID: "doc-1", ScopeID: "scope-a"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Index: 0},
		{ID: "chunk-2", DocumentID: "doc-1", ScopeID: "scope-a", Index: 1},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_GetChunksOrdered(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "chunk-b", DocumentID: "doc-1", Index: 1},
		{ID: "chunk-a", DocumentID: "doc-1", Index: 0},
	}))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "chunk-a", chunks[0].ID)
	assert.Equal(t, "chunk-b", chunks[1].ID)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	index := NewVectorIndex(3)
	ctx := context.Background()

	err := index.Upsert(ctx, []domain.VectorEntry{
		{ChunkID: "chunk-1", Embedding: []float32{1, 0}},
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = index.Search(ctx, []float32{1, 0}, 5, driven.VectorFilter{ScopeID: "scope-a"})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_SearchRanksByCosine(t *testing.T) {
	index := NewVectorIndex(3)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorEntry{
		{ChunkID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Path: "/a.txt", Embedding: []float32{1, 0, 0}},
		{ChunkID: "chunk-2", DocumentID: "doc-1", ScopeID: "scope-a", Path: "/a.txt", Embedding: []float32{0.9, 0.1, 0}},
		{ChunkID: "chunk-3", DocumentID: "doc-2", ScopeID: "scope-a", Path: "/b.txt", Embedding: []float32{0, 1, 0}},
	}))

	hits, err := index.Search(ctx, []float32{1, 0, 0}, 2, driven.VectorFilter{ScopeID: "scope-a"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "chunk-1", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Equal(t, "chunk-2", hits[1].ChunkID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestVectorIndex_FiltersByScopeAndPath(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorEntry{
		{ChunkID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Path: "/reports/q3.txt", Embedding: []float32{1, 0}},
		{ChunkID: "chunk-2", DocumentID: "doc-2", ScopeID: "scope-a", Path: "/notes/standup.txt", Embedding: []float32{1, 0}},
		{ChunkID: "chunk-3", DocumentID: "doc-3", ScopeID: "scope-b", Path: "/reports/q3.txt", Embedding: []float32{1, 0}},
	}))

	hits, err := index.Search(ctx, []float32{1, 0}, 10,
		driven.VectorFilter{ScopeID: "scope-a", PathPrefix: "/reports/"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-1", hits[0].ChunkID)
}

func TestVectorIndex_DeleteByDocument(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorEntry{
		{ChunkID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Embedding: []float32{1, 0}},
		{ChunkID: "chunk-2", DocumentID: "doc-2", ScopeID: "scope-a", Embedding: []float32{1, 0}},
	}))
	require.NoError(t, index.DeleteByDocument(ctx, "doc-1"))

	hits, err := index.Search(ctx, []float32{1, 0}, 10, driven.VectorFilter{ScopeID: "scope-a"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-2", hits[0].ChunkID)
}

func TestVectorIndex_NegativeCosineClampsToZero(t *testing.T) {
	index := NewVectorIndex(2)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.VectorEntry{
		{ChunkID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Embedding: []float32{-1, 0}},
	}))

	hits, err := index.Search(ctx, []float32{1, 0}, 10, driven.VectorFilter{ScopeID: "scope-a"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Similarity)
}

func TestKeywordIndex_ScoresByTermFrequency(t *testing.T) {
	index := NewKeywordIndex(nil)
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Content: "revenue revenue growth"},
		{ID: "chunk-2", DocumentID: "doc-1", ScopeID: "scope-a", Content: "Revenue was flat"},
		{ID: "chunk-3", DocumentID: "doc-2", ScopeID: "scope-a", Content: "sprint planning notes"},
	}))

	hits, err := index.Search(ctx, "revenue", 10, driven.VectorFilter{ScopeID: "scope-a"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "chunk-1", hits[0].ChunkID)
	assert.Equal(t, 2.0, hits[0].Score)
	assert.Equal(t, "chunk-2", hits[1].ChunkID)
	assert.Equal(t, 1.0, hits[1].Score)
}

func TestKeywordIndex_PathPrefixResolvesThroughDocStore(t *testing.T) {
	docs := NewDocumentStore()
	index := NewKeywordIndex(docs)
	ctx := context.Background()

	require.NoError(t, docs.InsertDocument(ctx, &domain.Document{ID: "doc-1", ScopeID: "scope-a", Path: "/reports/q3.txt"}))
	require.NoError(t, docs.InsertDocument(ctx, &domain.Document{ID: "doc-2", ScopeID: "scope-a", Path: "/notes/standup.txt"}))
	require.NoError(t, index.Index(ctx, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Content: "revenue growth"},
		{ID: "chunk-2", DocumentID: "doc-2", ScopeID: "scope-a", Content: "revenue mention in notes"},
	}))

	hits, err := index.Search(ctx, "revenue", 10,
		driven.VectorFilter{ScopeID: "scope-a", PathPrefix: "/reports/"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-1", hits[0].ChunkID)
}

func TestKeywordIndex_DeleteByDocument(t *testing.T) {
	index := NewKeywordIndex(nil)
	ctx := context.Background()

	require.NoError(t, index.Index(ctx, []domain.Chunk{
		{ID: "chunk-1", DocumentID: "doc-1", ScopeID: "scope-a", Content: "revenue growth"},
		{ID: "chunk-2", DocumentID: "doc-2", ScopeID: "scope-a", Content: "revenue too"},
	}))
	require.NoError(t, index.DeleteByDocument(ctx, "doc-1"))

	hits, err := index.Search(ctx, "revenue", 10, driven.VectorFilter{ScopeID: "scope-a"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "chunk-2", hits[0].ChunkID)
}
