// Package qdrant adapts the qdrant vector database to the VectorIndex
// port. Points live in a single collection configured for cosine
// distance; scope and path travel in the point payload so searches can
// be confined server-side.
package qdrant

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/logger"
)

const (
	// DefaultCollection is the collection name when none is configured.
	DefaultCollection = "quarry_chunks"

	// prefixOverfetch widens server-side fetches when a path prefix
	// filter must be applied client-side.
	prefixOverfetch = 4
)

// Config holds the connection and collection settings.
type Config struct {
	// Host is the qdrant server host. Defaults to localhost.
	Host string

	// Port is the gRPC port. Defaults to 6334.
	Port int

	// APIKey authenticates against a managed qdrant instance. Optional.
	APIKey string

	// Collection is the collection name. Defaults to DefaultCollection.
	Collection string

	// Dimensions is the expected vector size. Required.
	Dimensions int
}

// Index implements driven.VectorIndex backed by qdrant.
type Index struct {
	client     *qdrant.Client
	collection string
	dims       int
}

var _ driven.VectorIndex = (*Index)(nil)

// NewIndex connects to qdrant and ensures the collection exists with
// cosine distance and the configured dimensionality.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("qdrant index requires a positive dimension, got %d", cfg.Dimensions)
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	idx := &Index{
		client:     client,
		collection: cfg.Collection,
		dims:       cfg.Dimensions,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureCollection(ctx context.Context) error {
	names, err := i.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}
	for _, name := range names {
		if name == i.collection {
			return nil
		}
	}

	logger.Debug("Creating qdrant collection %s (%d dimensions)", i.collection, i.dims)
	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.dims),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", i.collection, err)
	}
	return nil
}

// Upsert inserts or replaces vector entries.
func (i *Index) Upsert(ctx context.Context, entries []domain.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Embedding) != i.dims {
			return fmt.Errorf("chunk %s has %d dimensions, collection expects %d: %w",
				entry.ChunkID, len(entry.Embedding), i.dims, domain.ErrDimensionMismatch)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(entry.ChunkID),
			Vectors: qdrant.NewVectors(entry.Embedding...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"chunk_id":    entry.ChunkID,
				"document_id": entry.DocumentID,
				"scope_id":    entry.ScopeID,
				"path":        entry.Path,
				"model_id":    entry.ModelID,
			}),
		})
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting %d points: %w", len(points), err)
	}
	return nil
}

// Search finds the topK nearest entries to the query vector. Scope is
// filtered server-side; qdrant has no prefix matcher for keyword
// payload fields, so path prefixes are filtered here after an
// overfetched query.
func (i *Index) Search(ctx context.Context, query []float32, topK int, filter driven.VectorFilter) ([]driven.VectorHit, error) {
	if len(query) != i.dims {
		return nil, fmt.Errorf("query has %d dimensions, collection expects %d: %w",
			len(query), i.dims, domain.ErrDimensionMismatch)
	}

	limit := uint64(topK)
	if filter.PathPrefix != "" {
		limit = uint64(topK * prefixOverfetch)
	}

	var qf *qdrant.Filter
	if filter.ScopeID != "" {
		qf = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("scope_id", filter.ScopeID),
			},
		}
	}

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		Filter:         qf,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", i.collection, err)
	}

	hits := make([]driven.VectorHit, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		if payload == nil {
			continue
		}
		if filter.PathPrefix != "" &&
			!strings.HasPrefix(payload["path"].GetStringValue(), filter.PathPrefix) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    payload["chunk_id"].GetStringValue(),
			DocumentID: payload["document_id"].GetStringValue(),
			Similarity: clampUnit(float64(point.GetScore())),
		})
		if len(hits) == topK {
			break
		}
	}
	return hits, nil
}

// DeleteByDocument removes every point belonging to the document.
func (i *Index) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := i.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: i.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("document_id", documentID),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points for document %s: %w", documentID, err)
	}
	return nil
}

// Close releases the gRPC channel.
func (i *Index) Close() error {
	return i.client.Close()
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
