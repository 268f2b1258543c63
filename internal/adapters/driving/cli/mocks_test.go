package cli

import (
	"context"
	"time"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// Hand-rolled mocks for the driving ports the commands use.

type mockSearchService struct {
	results  *domain.SearchResults
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) (*domain.SearchResults, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockIngestionService struct {
	job        *domain.IngestionJob
	status     *domain.JobStatus
	lastReq    driving.IngestRequest
	cancelled  bool
	enqueueErr error
	statusErr  error
}

func (m *mockIngestionService) Enqueue(_ context.Context, req driving.IngestRequest) (*domain.IngestionJob, error) {
	m.lastReq = req
	if m.enqueueErr != nil {
		return nil, m.enqueueErr
	}
	job := *m.job
	job.Path = req.Path
	return &job, nil
}

func (m *mockIngestionService) JobStatus(jobID string) (*domain.JobStatus, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	status := *m.status
	status.JobID = jobID
	return &status, nil
}

func (m *mockIngestionService) CancelDocument(string) bool {
	return m.cancelled
}

type mockReindexService struct {
	result *domain.ReindexResult
	reason domain.ReindexReason
	err    error
}

func (m *mockReindexService) Reindex(_ context.Context, _ domain.ReindexRequest) (*domain.ReindexResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockReindexService) Inspect(_ context.Context, _ string, _ bool) (domain.ReindexReason, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reason, nil
}

type mockDocumentService struct {
	docs      []domain.Document
	getErr    error
	deleteErr error
	deleted   []string
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.docs {
		if m.docs[i].ID == documentID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context, scopeID, pathPrefix string) ([]domain.Document, error) {
	var out []domain.Document
	for _, doc := range m.docs {
		if doc.ScopeID != scopeID {
			continue
		}
		if pathPrefix != "" && len(doc.Path) >= len(pathPrefix) && doc.Path[:len(pathPrefix)] != pathPrefix {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *mockDocumentService) Delete(_ context.Context, documentID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, documentID)
	return nil
}

type mockSettingsService struct {
	embedding domain.EmbeddingSettings
	set       map[string]any
	setErr    error
}

func (m *mockSettingsService) Embedding() domain.EmbeddingSettings { return m.embedding }

func (m *mockSettingsService) Chunking() domain.ChunkingSettings {
	return domain.DefaultChunkingSettings()
}

func (m *mockSettingsService) Search() domain.SearchSettings { return domain.DefaultSearchSettings() }

func (m *mockSettingsService) Queue() domain.QueueSettings { return domain.DefaultQueueSettings() }

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string, dimensions int, apiKey string) error {
	m.embedding = domain.EmbeddingSettings{Provider: provider, Model: model, Dimensions: dimensions, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetSearchMode(mode domain.SearchMode) error {
	return m.Set("search.mode", mode.String())
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]any)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Path() string { return "/tmp/quarry-test/config.toml" }

// setupTestServices installs mock services with canned data and returns
// a cleanup that restores the previous ones.
func setupTestServices() func() {
	oldSearch := searchService
	oldIngestion := ingestionService
	oldReindex := reindexService
	oldDocument := documentService
	oldSettings := settingsService

	searchService = &mockSearchService{
		results: &domain.SearchResults{
			Hits: []domain.SearchHit{
				{ChunkID: "chunk-1", DocumentID: "doc-1", Content: "quarterly revenue grew", Score: 0.91},
				{ChunkID: "chunk-2", DocumentID: "doc-2", Content: "cost breakdown by region", Score: 0.64},
			},
			Total:    2,
			Duration: 12 * time.Millisecond,
		},
	}
	ingestionService = &mockIngestionService{
		job: &domain.IngestionJob{ID: "job-1", DocumentID: "doc-1"},
		status: &domain.JobStatus{
			JobID:      "job-1",
			DocumentID: "doc-1",
			State:      domain.JobCompleted,
		},
		cancelled: true,
	}
	reindexService = &mockReindexService{
		result: &domain.ReindexResult{
			Enqueued: 2,
			Skipped:  1,
			Reasons: map[domain.ReindexReason]int{
				domain.ReasonContentChanged: 2,
				domain.ReasonUnchanged:      1,
			},
		},
		reason: domain.ReasonUnchanged,
	}
	documentService = &mockDocumentService{
		docs: []domain.Document{
			{ID: "doc-1", ScopeID: "ws-1", Path: "docs/report.md", Status: domain.DocumentReady},
			{ID: "doc-2", ScopeID: "ws-1", Path: "docs/costs.md", Status: domain.DocumentReady},
		},
	}
	settingsService = &mockSettingsService{}

	return func() {
		searchService = oldSearch
		ingestionService = oldIngestion
		reindexService = oldReindex
		documentService = oldDocument
		settingsService = oldSettings
	}
}
