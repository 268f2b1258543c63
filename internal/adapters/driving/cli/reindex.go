package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/domain"
)

var (
	reindexScope string
	reindexIDs   []string
	reindexForce bool

	inspectForce bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-enqueue documents whose content or settings drifted",
	Long: `Compares each selected document against its source content and the
current embedding and chunking configuration, and re-enqueues the ones
that drifted. Unchanged documents are skipped unless --force is given.

With no --id and no --scope the whole corpus is examined.`,
	RunE: runReindex,
}

var reindexInspectCmd = &cobra.Command{
	Use:   "inspect [document-id]",
	Short: "Report why a document would (or would not) be reindexed",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindexInspect,
}

func init() {
	reindexCmd.Flags().StringVarP(&reindexScope, "scope", "s", "", "limit to one scope")
	reindexCmd.Flags().StringSliceVar(&reindexIDs, "id", nil, "explicit document ids (repeatable)")
	reindexCmd.Flags().BoolVarP(&reindexForce, "force", "f", false, "re-enqueue regardless of drift")
	reindexInspectCmd.Flags().BoolVarP(&inspectForce, "force", "f", false, "report as if --force were given")
	reindexCmd.AddCommand(reindexInspectCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if reindexService == nil {
		return errors.New("reindex service not configured")
	}

	result, err := reindexService.Reindex(cmd.Context(), domain.ReindexRequest{
		DocumentIDs: reindexIDs,
		ScopeID:     reindexScope,
		Force:       reindexForce,
	})
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Enqueued: %d\n", result.Enqueued)
	cmd.Printf("Skipped:  %d\n", result.Skipped)
	cmd.Printf("Failed:   %d\n", result.Failed)

	if len(result.Reasons) > 0 {
		cmd.Println()
		cmd.Println("Reasons:")
		for _, reason := range reasonOrder {
			if count := result.Reasons[reason]; count > 0 {
				cmd.Printf("  %-28s %d\n", reason, count)
			}
		}
	}
	return nil
}

// reasonOrder fixes the histogram print order to reason precedence.
var reasonOrder = []domain.ReindexReason{
	domain.ReasonForced,
	domain.ReasonContentChanged,
	domain.ReasonEmbeddingSettingsChanged,
	domain.ReasonChunkingSettingsChanged,
	domain.ReasonUnchanged,
	domain.ReasonReadFailed,
}

func runReindexInspect(cmd *cobra.Command, args []string) error {
	if reindexService == nil {
		return errors.New("reindex service not configured")
	}

	reason, err := reindexService.Inspect(cmd.Context(), args[0], inspectForce)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %s not found", args[0])
		}
		return fmt.Errorf("inspect failed: %w", err)
	}

	cmd.Printf("%s: %s", args[0], reason)
	if reason.NeedsReindex() {
		cmd.Printf(" (would reindex)")
	}
	cmd.Println()
	return nil
}
