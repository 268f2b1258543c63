package rerankers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydev/quarry/internal/core/domain"
)

// stubReranker is a minimal Reranker for registry tests.
type stubReranker struct {
	name string
}

func (s *stubReranker) Name() string { return s.name }
func (s *stubReranker) Rerank(_ context.Context, _ string, _ [][]domain.SearchHit) ([]domain.SearchHit, error) {
	return nil, nil
}

func TestRegistry_GetRegistered(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubReranker{name: "custom"})

	reranker, err := registry.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, "custom", reranker.Name())
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("nope")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_NamesSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubReranker{name: "zeta"})
	registry.Register(&stubReranker{name: "alpha"})

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Names())
}
