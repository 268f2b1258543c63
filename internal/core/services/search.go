package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
	"github.com/quarrydev/quarry/internal/logger"
)

// Ensure SearchService implements the port.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs semantic, keyword and hybrid queries. Hybrid mode
// fans out to both indexes concurrently; each branch holds its own
// storage session, so neither blocks the other.
type SearchService struct {
	docs      driven.DocumentStore
	vectors   driven.VectorIndex
	keywords  driven.KeywordIndex
	embedder  driven.EmbeddingService
	rerankers driven.RerankerRegistry
	settings  domain.SearchSettings
}

// SearchDeps bundles the collaborators of a search service. Vector
// index, keyword index and embedder are optional; modes that need a
// missing one are reported unavailable.
type SearchDeps struct {
	Docs      driven.DocumentStore
	Vectors   driven.VectorIndex
	Keywords  driven.KeywordIndex
	Embedder  driven.EmbeddingService
	Rerankers driven.RerankerRegistry
	Settings  domain.SearchSettings
}

// NewSearchService creates a search service.
func NewSearchService(deps SearchDeps) *SearchService {
	defaults := domain.DefaultSearchSettings()
	if deps.Settings.Mode == "" {
		deps.Settings.Mode = defaults.Mode
	}
	if deps.Settings.Reranker == "" {
		deps.Settings.Reranker = defaults.Reranker
	}
	if deps.Settings.OverfetchFactor <= 0 {
		deps.Settings.OverfetchFactor = defaults.OverfetchFactor
	}
	return &SearchService{
		docs:      deps.Docs,
		vectors:   deps.Vectors,
		keywords:  deps.Keywords,
		embedder:  deps.Embedder,
		rerankers: deps.Rerankers,
		settings:  deps.Settings,
	}
}

// Search runs the query and returns ranked hits with the candidate
// total and wall-clock duration.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResults, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", domain.ErrInvalidInput)
	}
	if opts.ScopeID == "" {
		return nil, domain.ErrScopeRequired
	}
	if opts.Mode == "" {
		opts.Mode = s.settings.Mode
	}
	if !opts.Mode.IsValid() {
		return nil, fmt.Errorf("unknown search mode %q: %w", opts.Mode, domain.ErrInvalidInput)
	}
	if opts.TopK <= 0 {
		opts.TopK = 10
	}
	if opts.Reranker == "" {
		opts.Reranker = s.settings.Reranker
	}

	fetchK := opts.TopK * s.settings.OverfetchFactor
	filter := driven.VectorFilter{ScopeID: opts.ScopeID, PathPrefix: opts.PathPrefix}

	var hits []domain.SearchHit
	var total int
	var err error
	switch opts.Mode {
	case domain.SearchModeSemantic:
		hits, err = s.semanticSearch(ctx, query, fetchK, filter, opts.MinScore)
		total = len(hits)
	case domain.SearchModeKeyword:
		hits, err = s.keywordSearch(ctx, query, fetchK, filter, opts.MinScore)
		total = len(hits)
	case domain.SearchModeHybrid:
		hits, total, err = s.hybridSearch(ctx, query, fetchK, filter, opts)
	}
	if err != nil {
		return nil, err
	}

	if len(hits) > opts.TopK {
		hits = hits[:opts.TopK]
	}
	if err := s.hydrate(ctx, hits); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	logger.Debug("search %q (%s): %d hits of %d candidates in %s",
		query, opts.Mode, len(hits), total, duration)

	return &domain.SearchResults{
		Hits:     hits,
		Total:    total,
		Duration: duration,
	}, nil
}

// semanticSearch embeds the query and runs similarity search. Hits come
// back sorted by similarity descending with the source tag set.
func (s *SearchService) semanticSearch(ctx context.Context, query string, topK int, filter driven.VectorFilter, minScore float64) ([]domain.SearchHit, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	candidates, err := s.vectors.Search(ctx, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(candidates))
	for _, c := range candidates {
		score := clampScore(c.Similarity)
		if score < minScore {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    c.ChunkID,
			DocumentID: c.DocumentID,
			Score:      score,
			Metadata:   map[string]string{domain.MetaHitSource: domain.HitSourceVector},
		})
	}
	return hits, nil
}

// keywordSearch runs lexical search and normalises the engine's raw
// scores into [0,1]. When every raw score is identical the whole range
// maps to 1.0 rather than dividing by a zero range.
func (s *SearchService) keywordSearch(ctx context.Context, query string, topK int, filter driven.VectorFilter, minScore float64) ([]domain.SearchHit, error) {
	if s.keywords == nil {
		return nil, domain.ErrKeywordIndexUnavailable
	}

	candidates, err := s.keywords.Search(ctx, query, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	minRaw, maxRaw := candidates[0].Score, candidates[0].Score
	for _, c := range candidates[1:] {
		if c.Score < minRaw {
			minRaw = c.Score
		}
		if c.Score > maxRaw {
			maxRaw = c.Score
		}
	}

	hits := make([]domain.SearchHit, 0, len(candidates))
	for _, c := range candidates {
		score := 1.0
		if maxRaw > minRaw {
			score = (c.Score - minRaw) / (maxRaw - minRaw)
		}
		if score < minScore {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    c.ChunkID,
			DocumentID: c.DocumentID,
			Score:      score,
			Metadata:   map[string]string{domain.MetaHitSource: domain.HitSourceKeyword},
		})
	}
	return hits, nil
}

// hybridSearch fans out to both branches concurrently and fuses the
// ranked lists. Duplicates across branches are expected; fusion merges
// them by chunk id.
func (s *SearchService) hybridSearch(ctx context.Context, query string, fetchK int, filter driven.VectorFilter, opts domain.SearchOptions) ([]domain.SearchHit, int, error) {
	if s.embedder == nil {
		return nil, 0, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil {
		return nil, 0, domain.ErrVectorIndexUnavailable
	}
	if s.keywords == nil {
		return nil, 0, domain.ErrKeywordIndexUnavailable
	}

	var vectorHits, keywordHits []domain.SearchHit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vectorHits, err = s.semanticSearch(gctx, query, fetchK, filter, opts.MinScore)
		return err
	})
	g.Go(func() error {
		var err error
		keywordHits, err = s.keywordSearch(gctx, query, fetchK, filter, opts.MinScore)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	// Content is filled before fusion: rerankers that score candidate
	// text against the query need it, and truncation happens after.
	if err := s.hydrate(ctx, vectorHits); err != nil {
		return nil, 0, err
	}
	if err := s.hydrate(ctx, keywordHits); err != nil {
		return nil, 0, err
	}

	reranker, err := s.rerankers.Get(opts.Reranker)
	if err != nil {
		return nil, 0, err
	}
	fused, err := reranker.Rerank(ctx, query, [][]domain.SearchHit{vectorHits, keywordHits})
	if err != nil {
		return nil, 0, err
	}

	// MinScore applies again after fusion; fused scores live on a
	// different scale than the per-branch ones.
	filtered := fused[:0]
	for _, hit := range fused {
		if hit.Score >= opts.MinScore {
			filtered = append(filtered, hit)
		}
	}
	return filtered, len(fused), nil
}

// hydrate fills chunk content for hits that do not carry it yet. Hits
// hydrated ahead of fusion keep their content through truncation.
func (s *SearchService) hydrate(ctx context.Context, hits []domain.SearchHit) error {
	for i := range hits {
		if hits[i].Content != "" {
			continue
		}
		chunk, err := s.docs.GetChunk(ctx, hits[i].ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			// Index entry outlived its chunk; leave the hit without text.
			logger.Debug("hydrating chunk %s: %v", hits[i].ChunkID, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("hydrating chunk %s: %w", hits[i].ChunkID, err)
		}
		hits[i].Content = chunk.Content
	}
	return nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
