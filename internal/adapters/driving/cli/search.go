package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/domain"
)

var (
	searchScope    string
	searchPath     string
	searchMode     string
	searchTopK     int
	searchMinScore float64
	searchReranker string
	searchJSON     bool
)

// Styles for the result table. Lipgloss degrades to plain text when
// stdout is not a terminal.
var (
	rankStyle  = lipgloss.NewStyle().Faint(true)
	pathStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	metaStyle  = lipgloss.NewStyle().Faint(true)
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Searches the indexed corpus within a scope.

Modes:
  semantic - vector similarity only (requires an embedding provider)
  keyword  - full-text relevance only
  hybrid   - both, fused by the configured reranker (default)`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchScope, "scope", "s", "", "scope to search in (required)")
	searchCmd.Flags().StringVar(&searchPath, "path", "", "restrict hits to documents under this path prefix")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode: semantic, keyword, or hybrid")
	searchCmd.Flags().IntVarP(&searchTopK, "top", "n", 10, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "discard hits scoring below this threshold")
	searchCmd.Flags().StringVar(&searchReranker, "reranker", "", "rank fusion strategy for hybrid mode")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}
	if searchScope == "" {
		return errors.New("--scope is required")
	}

	opts := domain.SearchOptions{
		ScopeID:    searchScope,
		PathPrefix: searchPath,
		TopK:       searchTopK,
		MinScore:   searchMinScore,
		Mode:       domain.SearchMode(searchMode),
		Reranker:   searchReranker,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results *domain.SearchResults) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results *domain.SearchResults) error {
	if len(results.Hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(metaStyle.Render(fmt.Sprintf("%d of %d candidates (%s)",
		len(results.Hits), results.Total, results.Duration.Round(time.Millisecond))))
	cmd.Println()

	paths := documentPaths(cmd, results.Hits)
	for i, hit := range results.Hits {
		label := paths[hit.DocumentID]
		if label == "" {
			label = hit.DocumentID
		}
		cmd.Printf("  %s %s  %s\n",
			rankStyle.Render(fmt.Sprintf("[%d]", i+1)),
			pathStyle.Render(label),
			scoreStyle.Render(fmt.Sprintf("%.2f", hit.Score)))
		if text := snippet(hit.Content); text != "" {
			cmd.Printf("      %s\n", text)
		}
		cmd.Println()
	}

	return nil
}

// documentPaths resolves hit document ids to logical paths for display.
// Resolution is best effort; hits whose document cannot be loaded fall
// back to the raw id.
func documentPaths(cmd *cobra.Command, hits []domain.SearchHit) map[string]string {
	paths := make(map[string]string)
	if documentService == nil {
		return paths
	}
	for _, hit := range hits {
		if _, seen := paths[hit.DocumentID]; seen {
			continue
		}
		doc, err := documentService.Get(cmd.Context(), hit.DocumentID)
		if err != nil {
			paths[hit.DocumentID] = ""
			continue
		}
		paths[hit.DocumentID] = doc.Path
	}
	return paths
}

const snippetLength = 160

func snippet(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if len(text) > snippetLength {
		text = text[:snippetLength] + "..."
	}
	return text
}
