// Package cli wires the cobra command tree that drives the core
// services. Commands talk to the core through the driving ports only;
// main injects the concrete services via SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/ports/driving"
	"github.com/quarrydev/quarry/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services bundles the driving ports the commands use.
type Services struct {
	Search    driving.SearchService
	Ingestion driving.IngestionService
	Reindex   driving.ReindexService
	Document  driving.DocumentService
	Settings  driving.SettingsService
}

// Package-level service handles, injected before Execute.
var (
	searchService    driving.SearchService
	ingestionService driving.IngestionService
	reindexService   driving.ReindexService
	documentService  driving.DocumentService
	settingsService  driving.SettingsService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Local document ingestion and hybrid search",
	Long: `Quarry ingests documents into a local index and answers queries
with hybrid semantic + keyword search.

Documents are parsed, chunked, optionally embedded, and indexed in the
background. Search fuses vector similarity and full-text relevance.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// SetServices injects the core services into the command tree.
func SetServices(s Services) {
	searchService = s.Search
	ingestionService = s.Ingestion
	reindexService = s.Reindex
	documentService = s.Document
	settingsService = s.Settings
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
