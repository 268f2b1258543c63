package domain

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentPending means the document is registered but not yet processed.
	DocumentPending DocumentStatus = "pending"

	// DocumentProcessing means a worker is currently running the pipeline.
	DocumentProcessing DocumentStatus = "processing"

	// DocumentReady means the document is fully indexed and searchable.
	DocumentReady DocumentStatus = "ready"

	// DocumentFailed means the last ingestion attempt failed.
	DocumentFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentProcessing, DocumentReady, DocumentFailed:
		return true
	default:
		return false
	}
}

// Metadata keys used to record indexing provenance on a document.
// The reindex service compares these against current settings to decide
// whether a settings change requires re-processing.
const (
	MetaChunkingStrategy    = "chunking.strategy"
	MetaChunkingMaxTokens   = "chunking.max_tokens"
	MetaChunkingOverlap     = "chunking.overlap"
	MetaChunkingMinTokens   = "chunking.min_tokens"
	MetaChunkingThreshold   = "chunking.similarity_threshold"
	MetaEmbeddingProvider   = "embedding.provider"
	MetaEmbeddingModel      = "embedding.model"
	MetaEmbeddingDimensions = "embedding.dimensions"
)

// Document represents an ingested file and its indexing state.
// One document owns many chunks; deleting a document cascades to its
// chunks and vector entries.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// ScopeID is the isolation boundary the document belongs to.
	// All queries are confined to a single scope.
	ScopeID string

	// Path is the logical path the content source resolves.
	Path string

	// FileName is the base name used for parser selection.
	FileName string

	// ContentType is the declared MIME type, if known.
	ContentType string

	// ContentHash is the SHA-256 digest of the raw bytes. It is the sole
	// authority on whether the document's content changed.
	ContentHash string

	// Size is the content length in bytes.
	Size int64

	// Status is the current lifecycle state.
	Status DocumentStatus

	// ErrorMessage holds the failure reason when Status is failed.
	ErrorMessage string

	// Metadata contains arbitrary key-value pairs, including the
	// indexing provenance keys (Meta* constants).
	Metadata map[string]string

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the document row last changed.
	UpdatedAt time.Time

	// LastIndexedAt is when the document last reached ready.
	LastIndexedAt time.Time
}

// Chunk is a bounded span of a document's text, the unit of embedding
// and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent document.
	DocumentID string

	// ScopeID is denormalised from the document for query performance.
	ScopeID string

	// Content is the chunk text.
	Content string

	// Index is the ordinal position within the document.
	Index int

	// TokenCount is a cheap heuristic estimate, not an exact tokenizer.
	TokenCount int

	// StartOffset and EndOffset are byte offsets into the parsed content.
	// Overlapping chunks may share a region.
	StartOffset int
	EndOffset   int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]string
}

// EstimateTokens approximates the token count of text at roughly four
// characters per token.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// VectorEntry pairs a chunk with its embedding and the model that
// produced it. An entry must never carry a vector whose dimensionality
// disagrees with the configured model.
type VectorEntry struct {
	// ChunkID is the chunk this vector represents.
	ChunkID string

	// DocumentID links to the owning document for delete-by-document.
	DocumentID string

	// ScopeID confines the entry to its scope.
	ScopeID string

	// Path is the owning document's logical path, denormalised so the
	// index can filter by path prefix without a document lookup.
	Path string

	// Embedding is the fixed-length vector.
	Embedding []float32

	// ModelID identifies the embedding model that produced the vector.
	ModelID string
}
