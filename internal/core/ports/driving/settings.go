package driving

import (
	"github.com/quarrydev/quarry/internal/core/domain"
)

// SettingsService exposes the persisted configuration as domain
// settings structs. Other services snapshot these at construction or
// enqueue time, so changes only affect later operations.
type SettingsService interface {
	// Embedding returns the configured embedding settings.
	Embedding() domain.EmbeddingSettings

	// Chunking returns the configured chunking settings with defaults
	// applied.
	Chunking() domain.ChunkingSettings

	// Search returns the configured search settings with defaults applied.
	Search() domain.SearchSettings

	// Queue returns the configured queue settings with defaults applied.
	Queue() domain.QueueSettings

	// SetEmbeddingProvider validates and persists an embedding provider
	// configuration.
	SetEmbeddingProvider(provider domain.AIProvider, model string, dimensions int, apiKey string) error

	// SetSearchMode validates and persists the default search mode.
	SetSearchMode(mode domain.SearchMode) error

	// Set persists an arbitrary configuration key.
	Set(key string, value any) error

	// Path returns the backing configuration file path.
	Path() string
}
