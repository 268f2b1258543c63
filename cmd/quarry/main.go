// Quarry is a local document ingestion pipeline and hybrid search
// engine. This binary wires the storage, embedding and index adapters
// into the core services and hands them to the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	filestore "github.com/quarrydev/quarry/internal/adapters/driven/config/file"
	"github.com/quarrydev/quarry/internal/adapters/driven/contentsource"
	"github.com/quarrydev/quarry/internal/adapters/driven/contentsource/filesystem"
	"github.com/quarrydev/quarry/internal/adapters/driven/contentsource/github"
	ollamaembed "github.com/quarrydev/quarry/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/quarrydev/quarry/internal/adapters/driven/embedding/openai"
	"github.com/quarrydev/quarry/internal/adapters/driven/progress"
	openairerank "github.com/quarrydev/quarry/internal/adapters/driven/rerank/openai"
	"github.com/quarrydev/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrydev/quarry/internal/adapters/driven/storage/sqlite"
	qdrantindex "github.com/quarrydev/quarry/internal/adapters/driven/vector/qdrant"
	"github.com/quarrydev/quarry/internal/adapters/driving/cli"
	"github.com/quarrydev/quarry/internal/chunkers"
	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driven"
	"github.com/quarrydev/quarry/internal/core/services"
	"github.com/quarrydev/quarry/internal/logger"
	"github.com/quarrydev/quarry/internal/parsers"
	"github.com/quarrydev/quarry/internal/parsers/html"
	"github.com/quarrydev/quarry/internal/parsers/markdown"
	"github.com/quarrydev/quarry/internal/parsers/office"
	"github.com/quarrydev/quarry/internal/parsers/plaintext"
	"github.com/quarrydev/quarry/internal/rerankers"
	"github.com/quarrydev/quarry/internal/rerankers/crossencoder"
	"github.com/quarrydev/quarry/internal/rerankers/rrf"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := filestore.NewConfigStore(os.Getenv("QUARRY_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	settings := services.NewSettingsService(configStore)
	embeddingSettings := settings.Embedding()
	chunkingSettings := settings.Chunking()
	searchSettings := settings.Search()
	queueSettings := settings.Queue()

	// Storage. The special path ":memory:" selects the in-memory
	// adapters; nothing survives process exit in that mode.
	dataDir := configStore.GetString(services.KeyStoragePath)
	memoryMode := dataDir == ":memory:"

	var (
		docs     driven.DocumentStore
		keywords driven.KeywordIndex
	)
	if memoryMode {
		memDocs := memory.NewDocumentStore()
		docs = memDocs
		keywords = memory.NewKeywordIndex(memDocs)
	} else {
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()
		docs = store.DocumentStore()
		keywords = store.KeywordIndex()
	}

	embedder, err := buildEmbedder(embeddingSettings)
	if err != nil {
		return err
	}
	if embedder != nil {
		defer embedder.Close()
	}

	var vectors driven.VectorIndex
	if embedder != nil {
		vectors, err = buildVectorIndex(configStore, embedder.Dimensions(), memoryMode)
		if err != nil {
			return err
		}
	}

	parserReg := parsers.NewRegistry()
	parserReg.Register(markdown.New())
	parserReg.Register(html.New())
	parserReg.Register(office.New())
	parserReg.Register(plaintext.New())
	parserReg.SetFallback(plaintext.New())

	chunkerReg := chunkers.NewRegistry()
	chunkers.RegisterDefaults(chunkerReg, embedder)

	rerankerReg := rerankers.NewRegistry()
	rerankerReg.Register(rrf.New(searchSettings.RRFConstant))
	if embeddingSettings.Provider == domain.AIProviderOpenAI && embeddingSettings.APIKey != "" {
		scorer, err := openairerank.NewScorer(openairerank.Config{
			APIKey:  embeddingSettings.APIKey,
			BaseURL: embeddingSettings.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("configuring relevance scorer: %w", err)
		}
		rerankerReg.Register(crossencoder.New(scorer))
	}

	source, err := buildContentSource(configStore)
	if err != nil {
		return err
	}

	pipeline := services.NewPipeline(services.PipelineDeps{
		Source:    source,
		Parsers:   parserReg,
		Chunkers:  chunkerReg,
		Embedder:  embedder,
		Docs:      docs,
		Vectors:   vectors,
		Keywords:  keywords,
		Embedding: embeddingSettings,
	})

	queue := services.NewQueue(pipeline, progress.NewLogObserver(), queueSettings)
	queue.Start()
	defer queue.Stop()

	ingestion := services.NewIngestionService(queue, docs, chunkingSettings)

	search := services.NewSearchService(services.SearchDeps{
		Docs:      docs,
		Vectors:   vectors,
		Keywords:  keywords,
		Embedder:  embedder,
		Rerankers: rerankerReg,
		Settings:  searchSettings,
	})

	reindex := services.NewReindexService(services.ReindexDeps{
		Docs:      docs,
		Source:    source,
		Vectors:   vectors,
		Keywords:  keywords,
		Ingestion: ingestion,
		Chunking:  chunkingSettings,
		Embedding: embeddingSettings,
	})

	document := services.NewDocumentService(docs, vectors, keywords)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Search:    search,
		Ingestion: ingestion,
		Reindex:   reindex,
		Document:  document,
		Settings:  settings,
	})

	return cli.Execute()
}

// buildEmbedder constructs the configured embedding provider. A nil
// service (no provider configured) disables semantic search and the
// semantic chunking strategy.
func buildEmbedder(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
			MaxBatch:   settings.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring openai embeddings: %w", err)
		}
		return svc, nil
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", settings.Provider)
	}
}

// buildVectorIndex connects to qdrant, or uses the brute-force memory
// index in memory mode.
func buildVectorIndex(store driven.ConfigStore, dimensions int, memoryMode bool) (driven.VectorIndex, error) {
	if memoryMode {
		return memory.NewVectorIndex(dimensions), nil
	}

	index, err := qdrantindex.NewIndex(context.Background(), qdrantindex.Config{
		Host:       store.GetString(services.KeyVectorHost),
		Port:       store.GetInt(services.KeyVectorPort),
		Collection: store.GetString(services.KeyVectorCollection),
		Dimensions: dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	return index, nil
}

// buildContentSource routes local paths to the filesystem and
// github.com/ paths to the GitHub API when a token is configured.
func buildContentSource(store driven.ConfigStore) (driven.ContentSource, error) {
	local := filesystem.New("")

	var remote driven.ContentSource
	if token := store.GetString(services.KeyGitHubToken); token != "" {
		src, err := github.New(github.Config{Token: token})
		if err != nil {
			return nil, fmt.Errorf("configuring github source: %w", err)
		}
		remote = src
		logger.Debug("GitHub content source enabled")
	}

	return contentsource.NewRouter(local, remote), nil
}
