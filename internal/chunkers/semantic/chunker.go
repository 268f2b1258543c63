// Package semantic implements embedding-driven topic-boundary chunking.
package semantic

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits content into sentence units, embeds them, and opens a
// chunk boundary wherever the cosine similarity between consecutive
// units drops below the threshold, subject to min/max token bounds.
type Chunker struct {
	maxTokens int
	minTokens int
	threshold float64
	embedder  driven.EmbeddingService
}

// unit is a sentence-level slice of the content with its byte offsets.
type unit struct {
	text  string
	start int
	end   int
}

// New creates a semantic chunker from a settings snapshot.
func New(settings domain.ChunkingSettings, embedder driven.EmbeddingService) *Chunker {
	defaults := domain.DefaultChunkingSettings()
	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaults.MaxTokens
	}
	minTokens := settings.MinTokens
	if minTokens <= 0 {
		minTokens = defaults.MinTokens
	}
	if minTokens > maxTokens {
		minTokens = maxTokens
	}
	threshold := settings.SimilarityThreshold
	if threshold <= 0 || threshold > 1 {
		threshold = defaults.SimilarityThreshold
	}
	return &Chunker{
		maxTokens: maxTokens,
		minTokens: minTokens,
		threshold: threshold,
		embedder:  embedder,
	}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return domain.ChunkerSemantic
}

// Chunk splits the content at topic boundaries.
func (c *Chunker) Chunk(ctx context.Context, content string) ([]domain.Chunk, error) {
	units := splitUnits(content)
	if len(units) == 0 {
		return nil, nil
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.text
	}
	embeddings, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding sentence units: %w", err)
	}
	if len(embeddings) != len(units) {
		return nil, fmt.Errorf("embedding sentence units: got %d vectors for %d units", len(embeddings), len(units))
	}

	var chunks []domain.Chunk
	first := 0
	tokens := domain.EstimateTokens(units[0].text)
	emit := func(last int) {
		text := content[units[first].start:units[last].end]
		chunks = append(chunks, domain.Chunk{
			Content:     text,
			Index:       len(chunks),
			TokenCount:  domain.EstimateTokens(text),
			StartOffset: units[first].start,
			EndOffset:   units[last].end,
		})
	}

	for i := 1; i < len(units); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next := domain.EstimateTokens(units[i].text)
		boundary := cosine(embeddings[i-1], embeddings[i]) < c.threshold && tokens >= c.minTokens
		if boundary || tokens+next > c.maxTokens {
			emit(i - 1)
			first = i
			tokens = next
			continue
		}
		tokens += next
	}
	emit(len(units) - 1)

	return chunks, nil
}

// splitUnits cuts content into sentence-level units. A unit ends at a
// sentence terminator followed by whitespace, or at a newline. Offsets
// cover the unit's span in the original content.
func splitUnits(content string) []unit {
	var units []unit
	start := 0

	push := func(end int) {
		text := content[start:end]
		if strings.TrimSpace(text) != "" {
			units = append(units, unit{text: text, start: start, end: end})
		}
		start = end
	}

	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			push(i + 1)
		case '.', '!', '?':
			if i+1 >= len(content) || content[i+1] == ' ' || content[i+1] == '\t' {
				push(i + 1)
			}
		}
	}
	if start < len(content) {
		push(len(content))
	}

	return units
}

// cosine returns the cosine similarity of two vectors, or 0 when either
// has zero magnitude or the lengths differ.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
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
