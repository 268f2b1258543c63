package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
)

// --- Mock implementations shared across service tests ---

// mockContentSource serves path-keyed byte content.
type mockContentSource struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func newMockContentSource() *mockContentSource {
	return &mockContentSource{files: make(map[string][]byte)}
}

func (m *mockContentSource) put(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(content)
}

func (m *mockContentSource) Fetch(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	content, ok := m.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// mockDocStore is an in-memory DocumentStore.
type mockDocStore struct {
	mu        sync.Mutex
	docs      map[string]domain.Document
	chunks    map[string]domain.Chunk
	insertErr error
	updateErr error
	saveErr   error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
	}
}

func (m *mockDocStore) InsertDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.docs[doc.ID]; ok {
		return domain.ErrInvalidInput
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocStore) UpdateDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.docs[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := doc
	return &copied, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context, scopeID, pathPrefix string) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var docs []domain.Document
	for _, doc := range m.docs {
		if scopeID != "" && doc.ScopeID != scopeID {
			continue
		}
		if pathPrefix != "" && !strings.HasPrefix(doc.Path, pathPrefix) {
			continue
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	for chunkID, chunk := range m.chunks {
		if chunk.DocumentID == id {
			delete(m.chunks, chunkID)
		}
	}
	return nil
}

func (m *mockDocStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, chunk := range chunks {
		m.chunks[chunk.ID] = chunk
	}
	return nil
}

func (m *mockDocStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chunk, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := chunk
	return &copied, nil
}

func (m *mockDocStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var chunks []domain.Chunk
	for _, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

func (m *mockDocStore) DeleteChunks(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for chunkID, chunk := range m.chunks {
		if chunk.DocumentID == documentID {
			delete(m.chunks, chunkID)
		}
	}
	return nil
}

// mockVectorIndex stores entries and serves preset hits.
type mockVectorIndex struct {
	mu        sync.Mutex
	entries   map[string]domain.VectorEntry
	hits      []driven.VectorHit
	searchErr error
	upsertErr error
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{entries: make(map[string]domain.VectorEntry)}
}

func (m *mockVectorIndex) Upsert(_ context.Context, entries []domain.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, entry := range entries {
		m.entries[entry.ChunkID] = entry
	}
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, topK int, _ driven.VectorFilter) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockVectorIndex) DeleteByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for chunkID, entry := range m.entries {
		if entry.DocumentID == documentID {
			delete(m.entries, chunkID)
		}
	}
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

func (m *mockVectorIndex) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// mockKeywordIndex stores chunk ids and serves preset hits.
type mockKeywordIndex struct {
	mu        sync.Mutex
	indexed   map[string]domain.Chunk
	hits      []driven.KeywordHit
	searchErr error
}

func newMockKeywordIndex() *mockKeywordIndex {
	return &mockKeywordIndex{indexed: make(map[string]domain.Chunk)}
}

func (m *mockKeywordIndex) Index(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		m.indexed[chunk.ID] = chunk
	}
	return nil
}

func (m *mockKeywordIndex) Search(_ context.Context, _ string, topK int, _ driven.VectorFilter) ([]driven.KeywordHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:topK], nil
}

func (m *mockKeywordIndex) DeleteByDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for chunkID, chunk := range m.indexed {
		if chunk.DocumentID == documentID {
			delete(m.indexed, chunkID)
		}
	}
	return nil
}

func (m *mockKeywordIndex) Close() error { return nil }

// mockEmbedder returns constant vectors.
type mockEmbedder struct {
	dims     int
	embedErr error
	batches  int
}

func (m *mockEmbedder) vector() []float32 {
	dims := m.dims
	if dims == 0 {
		dims = 4
	}
	vec := make([]float32, dims)
	vec[0] = 1
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector()
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims == 0 {
		return 4
	}
	return m.dims
}

func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockObserver records notified job statuses.
type mockObserver struct {
	mu       sync.Mutex
	statuses []domain.JobStatus
}

func (m *mockObserver) Notify(status domain.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

// blockingRunner lets tests hold a job in flight until released.
type blockingRunner struct {
	started chan string
	release chan struct{}
	runErr  error
	obeyCtx bool
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan string, 16),
		release: make(chan struct{}),
		obeyCtx: true,
	}
}

func (r *blockingRunner) Run(ctx context.Context, job domain.IngestionJob, _ func(domain.JobPhase)) error {
	r.started <- job.ID
	select {
	case <-r.release:
		return r.runErr
	case <-ctx.Done():
		if r.obeyCtx {
			return ctx.Err()
		}
		return r.runErr
	}
}

// instantRunner completes immediately with a fixed error.
type instantRunner struct {
	mu   sync.Mutex
	jobs []string
	err  error
}

func (r *instantRunner) Run(_ context.Context, job domain.IngestionJob, report func(domain.JobPhase)) error {
	r.mu.Lock()
	r.jobs = append(r.jobs, job.ID)
	r.mu.Unlock()
	if report != nil {
		report(domain.PhaseParsing)
	}
	return r.err
}
