package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quarrydev/quarry/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, search, queue, and embedding settings.

Settings are snapshotted when jobs are enqueued, so changes only affect
later operations.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration key",
	Long: `Sets one configuration key. Integers and floats are detected and
stored as numbers; everything else is stored as a string.

Examples:
  quarry settings set chunking.max_tokens 512
  quarry settings set search.mode keyword`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Interactively configure the embedding provider for semantic search.`,
	RunE:  runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Printf("Configuration: %s\n", settingsService.Path())
	cmd.Println()

	embedding := settingsService.Embedding()
	cmd.Println("[Embedding]")
	if embedding.Provider == "" {
		cmd.Println("  Provider: (not set, semantic search disabled)")
	} else {
		cmd.Printf("  Provider:   %s\n", embedding.Provider)
		cmd.Printf("  Model:      %s\n", embedding.Model)
		cmd.Printf("  Dimensions: %d\n", embedding.Dimensions)
		if embedding.BaseURL != "" {
			cmd.Printf("  Base URL:   %s\n", embedding.BaseURL)
		}
		if embedding.Provider.RequiresAPIKey() {
			if embedding.APIKey != "" {
				cmd.Printf("  API Key:    %s\n", maskAPIKey(embedding.APIKey))
			} else {
				cmd.Printf("  API Key:    (not set)\n")
			}
		}
		status := "configured"
		if !embedding.IsConfigured() {
			status = "not configured"
		}
		cmd.Printf("  Status:     %s\n", status)
	}
	cmd.Println()

	chunking := settingsService.Chunking()
	cmd.Println("[Chunking]")
	cmd.Printf("  Strategy:   %s\n", chunking.Strategy)
	cmd.Printf("  Max tokens: %d\n", chunking.MaxTokens)
	cmd.Printf("  Overlap:    %d\n", chunking.OverlapTokens)
	cmd.Println()

	search := settingsService.Search()
	cmd.Println("[Search]")
	cmd.Printf("  Mode:      %s\n", search.Mode)
	cmd.Printf("  Reranker:  %s\n", search.Reranker)
	cmd.Printf("  Overfetch: %dx\n", search.OverfetchFactor)
	cmd.Println()

	queue := settingsService.Queue()
	cmd.Println("[Queue]")
	cmd.Printf("  Capacity: %d\n", queue.Capacity)
	cmd.Printf("  Workers:  %d\n", queue.Workers)

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, raw := args[0], args[1]
	if err := settingsService.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel, defaultDims := embeddingDefaults(provider)
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	cmd.Printf("Enter vector dimensions [%d]: ", defaultDims)
	dims := parseChoice(readLine(reader), 1<<15, defaultDims)

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, dims, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s, %d dimensions)\n", provider, model, dims)
	cmd.Println("Documents indexed under the previous configuration will be picked up by 'quarry reindex'.")
	return nil
}

func embeddingDefaults(provider domain.AIProvider) (model string, dimensions int) {
	if provider == domain.AIProviderOpenAI {
		return "text-embedding-3-small", 1536
	}
	return "nomic-embed-text", 768
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when stdin is a terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
