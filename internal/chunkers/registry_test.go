package chunkers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// stubChunker is a minimal Chunker for registry tests.
type stubChunker struct {
	name string
}

func (s *stubChunker) Name() string { return s.name }
func (s *stubChunker) Chunk(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

// stubEmbedder satisfies the embedding port without making requests.
type stubEmbedder struct{}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return 2 }
func (s *stubEmbedder) ModelName() string            { return "stub" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

func TestRegistry_BuildRegistered(t *testing.T) {
	registry := NewRegistry()
	registry.Register("custom", func(_ domain.ChunkingSettings) (driven.Chunker, error) {
		return &stubChunker{name: "custom"}, nil
	})

	chunker, err := registry.Build("custom", domain.DefaultChunkingSettings())
	require.NoError(t, err)
	assert.Equal(t, "custom", chunker.Name())
}

func TestRegistry_BuildUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Build("nope", domain.DefaultChunkingSettings())
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NamesSorted(t *testing.T) {
	registry := NewRegistry()
	builder := func(_ domain.ChunkingSettings) (driven.Chunker, error) {
		return &stubChunker{}, nil
	}
	registry.Register("zeta", builder)
	registry.Register("alpha", builder)

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Names())
}

func TestRegisterDefaults_WithoutEmbedder(t *testing.T) {
	registry := NewRegistry()
	RegisterDefaults(registry, nil)

	assert.Equal(t, []string{domain.ChunkerFixed, domain.ChunkerRecursive}, registry.Names())

	_, err := registry.Build(domain.ChunkerSemantic, domain.DefaultChunkingSettings())
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegisterDefaults_WithEmbedder(t *testing.T) {
	registry := NewRegistry()
	RegisterDefaults(registry, &stubEmbedder{})

	assert.Equal(t, []string{
		domain.ChunkerFixed,
		domain.ChunkerRecursive,
		domain.ChunkerSemantic,
	}, registry.Names())

	chunker, err := registry.Build(domain.ChunkerSemantic, domain.DefaultChunkingSettings())
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkerSemantic, chunker.Name())
}
