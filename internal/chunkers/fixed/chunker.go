// Package fixed implements token-budgeted window chunking with overlap.
package fixed

import (
	"context"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// bytesPerToken is the inverse of the token estimation heuristic.
const bytesPerToken = 4

// sentenceEnders are boundary candidates after paragraph breaks, in
// preference order.
var sentenceEnders = []string{". ", "! ", "? ", "\n"}

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker emits fixed-size windows over the content, snapping each
// window end backward to the nearest natural break so chunks do not cut
// through sentences when a nearby boundary exists.
type Chunker struct {
	budget  int
	overlap int
}

// New creates a fixed-size chunker from a settings snapshot.
func New(settings domain.ChunkingSettings) *Chunker {
	budget := settings.MaxTokens * bytesPerToken
	if budget <= 0 {
		budget = domain.DefaultChunkingSettings().MaxTokens * bytesPerToken
	}
	overlap := settings.OverlapTokens * bytesPerToken
	if overlap < 0 {
		overlap = 0
	}
	// Overlap must leave room for forward progress.
	if overlap >= budget {
		overlap = budget / 2
	}
	return &Chunker{budget: budget, overlap: overlap}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return domain.ChunkerFixed
}

// Chunk splits the content into overlapping windows.
func (c *Chunker) Chunk(ctx context.Context, content string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	start := 0
	for start < len(content) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := c.snapBoundary(content, start, start+c.budget)
		piece := content[start:end]
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, domain.Chunk{
				Content:     piece,
				Index:       len(chunks),
				TokenCount:  domain.EstimateTokens(piece),
				StartOffset: start,
				EndOffset:   end,
			})
		}

		if end >= len(content) {
			break
		}
		next := end - c.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// snapBoundary scans backward from target for a natural break: first a
// paragraph break, then a sentence ender, then a space. The scan is
// bounded to a lookback window of 20% of the chunk budget so a boundary
// far from the target never shrinks the chunk drastically. The returned
// offset is always > start and never beyond len(content).
func (c *Chunker) snapBoundary(content string, start, target int) int {
	if target >= len(content) {
		return len(content)
	}

	floor := target - c.budget/5
	if floor <= start {
		floor = start + 1
	}
	if floor >= target {
		return target
	}
	window := content[floor:target]

	if idx := strings.LastIndex(window, "\n\n"); idx >= 0 {
		return floor + idx + 2
	}
	for _, ender := range sentenceEnders {
		if idx := strings.LastIndex(window, ender); idx >= 0 {
			return floor + idx + len(ender)
		}
	}
	if idx := strings.LastIndexByte(window, ' '); idx >= 0 {
		return floor + idx + 1
	}

	return target
}
