package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no parser or chunker handles the input.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrQueueFull is the backpressure signal returned when the
	// ingestion queue is at capacity. It is a first-class outcome for
	// the caller to handle, not a condition to retry blindly.
	ErrQueueFull = errors.New("ingestion queue full")

	// ErrQueueClosed indicates the worker pool has shut down.
	ErrQueueClosed = errors.New("ingestion queue closed")

	// ErrScopeRequired indicates a search or reindex call omitted the
	// scope identifier.
	ErrScopeRequired = errors.New("scope id required")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic and hybrid search are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrKeywordIndexUnavailable indicates the keyword index is not
	// configured. Lexical search is disabled without it.
	ErrKeywordIndexUnavailable = errors.New("keyword index unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured. Semantic similarity search is disabled without it.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector's length disagrees with
	// the configured embedding model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
