// Package recursive implements hierarchical separator-based chunking.
package recursive

import (
	"context"
	"strings"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// bytesPerToken is the inverse of the token estimation heuristic.
const bytesPerToken = 4

// separators is the split hierarchy: paragraph, line, sentence, word.
var separators = []string{"\n\n", "\n", ". ", " "}

// Ensure Chunker implements the port.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits content along an ordered separator hierarchy: segments
// that fit the budget are merged greedily, segments that do not are split
// again with the next separator, down to a hard byte cut.
type Chunker struct {
	budget  int
	overlap int
}

// New creates a recursive chunker from a settings snapshot.
func New(settings domain.ChunkingSettings) *Chunker {
	budget := settings.MaxTokens * bytesPerToken
	if budget <= 0 {
		budget = domain.DefaultChunkingSettings().MaxTokens * bytesPerToken
	}
	overlap := settings.OverlapTokens * bytesPerToken
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= budget {
		overlap = budget / 2
	}
	return &Chunker{budget: budget, overlap: overlap}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return domain.ChunkerRecursive
}

// Chunk splits the content hierarchically and emits ordered chunks with
// overlap context carried from each chunk into the next.
func (c *Chunker) Chunk(ctx context.Context, content string) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := c.split(content, separators)

	var chunks []domain.Chunk
	offset := 0
	prevTail := ""
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(seg) == "" {
			continue
		}

		segStart := locate(content, seg, offset)
		segEnd := segStart + len(seg)
		if segEnd > len(content) {
			segEnd = len(content)
		}

		text := seg
		start := segStart
		if prevTail != "" {
			text = prevTail + seg
			start = segStart - len(prevTail)
			if start < 0 {
				start = 0
			}
		}

		chunks = append(chunks, domain.Chunk{
			Content:     text,
			Index:       len(chunks),
			TokenCount:  domain.EstimateTokens(text),
			StartOffset: start,
			EndOffset:   segEnd,
		})

		offset = segEnd
		prevTail = tail(seg, c.overlap)
	}

	return chunks, nil
}

// locate finds the start offset of piece in content, searching from the
// running offset. The offset is clamped to the content length before the
// substring lookup; overlap bookkeeping can push it past the end.
func locate(content, piece string, from int) int {
	if from > len(content) {
		from = len(content)
	}
	if from < 0 {
		from = 0
	}
	if idx := strings.Index(content[from:], piece); idx >= 0 {
		return from + idx
	}
	return from
}

// tail returns up to n trailing bytes of s, snapped forward to a rune
// boundary so the overlap never starts mid-character.
func tail(s string, n int) string {
	if n <= 0 || len(s) <= n {
		if n <= 0 {
			return ""
		}
		return s
	}
	cut := len(s) - n
	for cut < len(s) && !utf8RuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// split breaks content into segments no larger than the byte budget,
// trying each separator in order and falling back to hard cuts when no
// separator helps.
func (c *Chunker) split(content string, seps []string) []string {
	if len(content) <= c.budget {
		if content == "" {
			return nil
		}
		return []string{content}
	}
	if len(seps) == 0 {
		return c.hardCut(content)
	}

	sep, rest := seps[0], seps[1:]
	parts := strings.SplitAfter(content, sep)

	var segments []string
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			segments = append(segments, pending.String())
			pending.Reset()
		}
	}

	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) > c.budget {
			flush()
			segments = append(segments, c.split(part, rest)...)
			continue
		}
		if pending.Len()+len(part) > c.budget {
			flush()
		}
		pending.WriteString(part)
	}
	flush()

	return segments
}

// hardCut slices content into budget-sized pieces on rune boundaries.
func (c *Chunker) hardCut(content string) []string {
	var pieces []string
	for len(content) > c.budget {
		cut := c.budget
		for cut > 0 && !utf8RuneStart(content[cut]) {
			cut--
		}
		if cut == 0 {
			cut = c.budget
		}
		pieces = append(pieces, content[:cut])
		content = content[cut:]
	}
	if content != "" {
		pieces = append(pieces, content)
	}
	return pieces
}
