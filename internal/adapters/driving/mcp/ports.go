package mcp

import (
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces the MCP server exposes.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers queries over the indexed corpus.
	Search driving.SearchService

	// Ingestion queues documents for background processing.
	Ingestion driving.IngestionService

	// Reindex detects drift and re-enqueues affected documents.
	Reindex driving.ReindexService

	// Document manages indexed documents.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	// Ingestion, Reindex and Document are optional; their tools and
	// resources are simply not registered when absent.
	return nil
}
