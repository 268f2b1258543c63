package domain

import "strconv"

// Chunking strategy names resolved against the chunker registry.
const (
	ChunkerFixed     = "fixed"
	ChunkerRecursive = "recursive"
	ChunkerSemantic  = "semantic"
)

// Reranker names resolved against the reranker registry.
const (
	RerankerRRF          = "rrf"
	RerankerCrossEncoder = "cross_encoder"
)

// AIProvider identifies an embedding or scoring service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// ChunkingSettings configures the chunking strategies.
type ChunkingSettings struct {
	// Strategy names the chunker to build ("fixed", "recursive", "semantic").
	Strategy string

	// MaxTokens is the token budget per chunk.
	MaxTokens int

	// OverlapTokens re-emits trailing tokens of a chunk as leading
	// context of the next (fixed and recursive strategies).
	OverlapTokens int

	// MinTokens is the lower chunk bound (semantic strategy).
	MinTokens int

	// SimilarityThreshold opens a boundary where consecutive sentence
	// similarity drops below it (semantic strategy).
	SimilarityThreshold float64
}

// DefaultChunkingSettings returns the standard chunking configuration.
func DefaultChunkingSettings() ChunkingSettings {
	return ChunkingSettings{
		Strategy:            ChunkerFixed,
		MaxTokens:           256,
		OverlapTokens:       32,
		MinTokens:           24,
		SimilarityThreshold: 0.75,
	}
}

// ProvenanceMetadata returns the metadata entries recorded on a document
// at index time so later settings drift can be detected without diffing
// a live settings object.
func (c ChunkingSettings) ProvenanceMetadata() map[string]string {
	meta := map[string]string{
		MetaChunkingStrategy:  c.Strategy,
		MetaChunkingMaxTokens: strconv.Itoa(c.MaxTokens),
		MetaChunkingOverlap:   strconv.Itoa(c.OverlapTokens),
	}
	// Min size and similarity threshold only shape semantic boundaries;
	// recording them for the other strategies would invalidate documents
	// on changes the chunker never sees.
	if c.Strategy == ChunkerSemantic {
		meta[MetaChunkingMinTokens] = strconv.Itoa(c.MinTokens)
		meta[MetaChunkingThreshold] = strconv.FormatFloat(c.SimilarityThreshold, 'g', -1, 64)
	}
	return meta
}

// MatchesProvenance reports whether the settings match a document's
// recorded provenance metadata.
func (c ChunkingSettings) MatchesProvenance(meta map[string]string) bool {
	if meta[MetaChunkingStrategy] != c.Strategy ||
		meta[MetaChunkingMaxTokens] != strconv.Itoa(c.MaxTokens) ||
		meta[MetaChunkingOverlap] != strconv.Itoa(c.OverlapTokens) {
		return false
	}
	if c.Strategy != ChunkerSemantic {
		return true
	}
	return meta[MetaChunkingMinTokens] == strconv.Itoa(c.MinTokens) &&
		meta[MetaChunkingThreshold] == strconv.FormatFloat(c.SimilarityThreshold, 'g', -1, 64)
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// Dimensions is the vector size the model produces.
	Dimensions int

	// BatchSize caps how many chunk texts go into one provider request.
	BatchSize int

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ProvenanceMetadata returns the embedding provenance recorded on a
// document at index time.
func (e EmbeddingSettings) ProvenanceMetadata() map[string]string {
	return map[string]string{
		MetaEmbeddingProvider:   e.Provider.String(),
		MetaEmbeddingModel:      e.Model,
		MetaEmbeddingDimensions: strconv.Itoa(e.Dimensions),
	}
}

// MatchesProvenance reports whether the settings match a document's
// recorded provenance metadata.
func (e EmbeddingSettings) MatchesProvenance(meta map[string]string) bool {
	return meta[MetaEmbeddingProvider] == e.Provider.String() &&
		meta[MetaEmbeddingModel] == e.Model &&
		meta[MetaEmbeddingDimensions] == strconv.Itoa(e.Dimensions)
}

// QueueSettings configures the ingestion queue and worker pool.
type QueueSettings struct {
	// Capacity bounds the queue; enqueue beyond it reports backpressure.
	Capacity int

	// Workers is the fixed worker pool size.
	Workers int
}

// DefaultQueueSettings returns the standard queue configuration.
func DefaultQueueSettings() QueueSettings {
	return QueueSettings{Capacity: 1000, Workers: 4}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Mode is the default retrieval mode.
	Mode SearchMode

	// Reranker is the default rank fusion strategy.
	Reranker string

	// RRFConstant is the k constant in 1/(k+rank) fusion.
	RRFConstant int

	// OverfetchFactor multiplies topK when querying each branch so
	// fusion has enough candidates.
	OverfetchFactor int
}

// DefaultSearchSettings returns the standard search configuration.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		Mode:            SearchModeHybrid,
		Reranker:        RerankerRRF,
		RRFConstant:     60,
		OverfetchFactor: 3,
	}
}
