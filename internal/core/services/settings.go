package services

import (
	"fmt"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

// Ensure SettingsService implements the port.
var _ driving.SettingsService = (*SettingsService)(nil)

// Configuration keys, dot-notation. The TOML store maps the prefix
// before the dot to a section.
const (
	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingModel      = "embedding.model"
	KeyEmbeddingDimensions = "embedding.dimensions"
	KeyEmbeddingBatchSize  = "embedding.batch_size"
	KeyEmbeddingBaseURL    = "embedding.base_url"
	KeyEmbeddingAPIKey     = "embedding.api_key"

	KeyChunkingStrategy  = "chunking.strategy"
	KeyChunkingMaxTokens = "chunking.max_tokens"
	KeyChunkingOverlap   = "chunking.overlap_tokens"
	KeyChunkingMinTokens = "chunking.min_tokens"
	KeyChunkingThreshold = "chunking.similarity_threshold"

	KeySearchMode      = "search.mode"
	KeySearchReranker  = "search.reranker"
	KeySearchRRFK      = "search.rrf_constant"
	KeySearchOverfetch = "search.overfetch_factor"

	KeyQueueCapacity = "queue.capacity"
	KeyQueueWorkers  = "queue.workers"

	KeyStoragePath      = "storage.path"
	KeyVectorHost       = "vector.host"
	KeyVectorPort       = "vector.port"
	KeyVectorCollection = "vector.collection"

	KeyGitHubToken = "github.token"
)

// SettingsService maps configuration keys to the domain settings
// structs the other services consume. Services take a settings
// snapshot at construction or enqueue time, so changes made here only
// affect later operations.
type SettingsService struct {
	store driven.ConfigStore
}

// NewSettingsService creates a settings service over a config store.
func NewSettingsService(store driven.ConfigStore) *SettingsService {
	return &SettingsService{store: store}
}

// Embedding returns the configured embedding settings.
func (s *SettingsService) Embedding() domain.EmbeddingSettings {
	settings := domain.EmbeddingSettings{
		Provider:   domain.AIProvider(s.store.GetString(KeyEmbeddingProvider)),
		Model:      s.store.GetString(KeyEmbeddingModel),
		Dimensions: s.store.GetInt(KeyEmbeddingDimensions),
		BatchSize:  s.store.GetInt(KeyEmbeddingBatchSize),
		BaseURL:    s.store.GetString(KeyEmbeddingBaseURL),
		APIKey:     s.store.GetString(KeyEmbeddingAPIKey),
	}
	return settings
}

// Chunking returns the configured chunking settings, with defaults for
// anything unset.
func (s *SettingsService) Chunking() domain.ChunkingSettings {
	settings := domain.DefaultChunkingSettings()
	if v := s.store.GetString(KeyChunkingStrategy); v != "" {
		settings.Strategy = v
	}
	if v := s.store.GetInt(KeyChunkingMaxTokens); v > 0 {
		settings.MaxTokens = v
	}
	if v, ok := s.store.Get(KeyChunkingOverlap); ok {
		if n, isInt := toInt(v); isInt {
			settings.OverlapTokens = n
		}
	}
	if v := s.store.GetInt(KeyChunkingMinTokens); v > 0 {
		settings.MinTokens = v
	}
	if v := s.store.GetFloat(KeyChunkingThreshold); v > 0 {
		settings.SimilarityThreshold = v
	}
	return settings
}

// Search returns the configured search settings, with defaults for
// anything unset.
func (s *SettingsService) Search() domain.SearchSettings {
	settings := domain.DefaultSearchSettings()
	if v := s.store.GetString(KeySearchMode); v != "" {
		settings.Mode = domain.SearchMode(v)
	}
	if v := s.store.GetString(KeySearchReranker); v != "" {
		settings.Reranker = v
	}
	if v := s.store.GetInt(KeySearchRRFK); v > 0 {
		settings.RRFConstant = v
	}
	if v := s.store.GetInt(KeySearchOverfetch); v > 0 {
		settings.OverfetchFactor = v
	}
	return settings
}

// Queue returns the configured queue settings, with defaults for
// anything unset.
func (s *SettingsService) Queue() domain.QueueSettings {
	settings := domain.DefaultQueueSettings()
	if v := s.store.GetInt(KeyQueueCapacity); v > 0 {
		settings.Capacity = v
	}
	if v := s.store.GetInt(KeyQueueWorkers); v > 0 {
		settings.Workers = v
	}
	return settings
}

// SetEmbeddingProvider persists an embedding provider configuration.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model string, dimensions int, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: provider %s requires an API key", domain.ErrInvalidInput, provider)
	}
	if err := s.store.Set(KeyEmbeddingProvider, provider.String()); err != nil {
		return err
	}
	if err := s.store.Set(KeyEmbeddingModel, model); err != nil {
		return err
	}
	if err := s.store.Set(KeyEmbeddingDimensions, dimensions); err != nil {
		return err
	}
	if apiKey != "" {
		if err := s.store.Set(KeyEmbeddingAPIKey, apiKey); err != nil {
			return err
		}
	}
	return nil
}

// SetSearchMode persists the default search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w: unknown search mode %q", domain.ErrInvalidInput, mode)
	}
	return s.store.Set(KeySearchMode, mode.String())
}

// Set persists an arbitrary configuration key.
func (s *SettingsService) Set(key string, value any) error {
	return s.store.Set(key, value)
}

// Path returns the backing configuration file path.
func (s *SettingsService) Path() string {
	return s.store.Path()
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
