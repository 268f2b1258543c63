package mcp

import (
	"context"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  *domain.SearchResults
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) (*domain.SearchResults, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	job     *domain.IngestionJob
	status  *domain.JobStatus
	lastReq driving.IngestRequest
	err     error
}

func (m *mockIngestionService) Enqueue(_ context.Context, req driving.IngestRequest) (*domain.IngestionJob, error) {
	m.lastReq = req
	return m.job, m.err
}

func (m *mockIngestionService) JobStatus(_ string) (*domain.JobStatus, error) {
	return m.status, m.err
}

func (m *mockIngestionService) CancelDocument(_ string) bool {
	return false
}

// mockReindexService is a mock implementation of driving.ReindexService.
type mockReindexService struct {
	result *domain.ReindexResult
	reason domain.ReindexReason
	err    error
}

func (m *mockReindexService) Reindex(_ context.Context, _ domain.ReindexRequest) (*domain.ReindexResult, error) {
	return m.result, m.err
}

func (m *mockReindexService) Inspect(_ context.Context, _ string, _ bool) (domain.ReindexReason, error) {
	return m.reason, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) List(_ context.Context, _, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}
