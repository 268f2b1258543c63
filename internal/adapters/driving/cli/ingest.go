package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
)

var (
	ingestScope      string
	ingestDocumentID string
	ingestType       string
	ingestStrategy   string
	ingestMaxTokens  int
	ingestOverlap    int
	ingestWait       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Queue documents for ingestion",
	Long: `Registers one or more logical paths for background ingestion.

Each path is parsed, chunked, embedded (when an embedding provider is
configured) and indexed by the worker pool. The command returns as soon
as the jobs are queued; use --wait to block until they finish.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestScope, "scope", "s", "", "scope to ingest into (required)")
	ingestCmd.Flags().StringVar(&ingestDocumentID, "id", "", "document id to update in place (single path only)")
	ingestCmd.Flags().StringVar(&ingestType, "type", "", "content type hint for parser selection")
	ingestCmd.Flags().StringVar(&ingestStrategy, "strategy", "", "chunking strategy override")
	ingestCmd.Flags().IntVar(&ingestMaxTokens, "max-tokens", 0, "chunk token budget override")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "chunk overlap override")
	ingestCmd.Flags().BoolVarP(&ingestWait, "wait", "w", false, "block until the jobs reach a terminal state")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if ingestScope == "" {
		return errors.New("--scope is required")
	}
	if ingestDocumentID != "" && len(args) > 1 {
		return errors.New("--id only applies to a single path")
	}

	// Overrides start from the configured settings so a partial override
	// (say --strategy alone) keeps the configured sizes instead of zeros.
	var chunking domain.ChunkingSettings
	if settingsService != nil {
		chunking = settingsService.Chunking()
	}
	if ingestStrategy != "" {
		chunking.Strategy = ingestStrategy
	}
	if cmd.Flags().Changed("max-tokens") {
		chunking.MaxTokens = ingestMaxTokens
	}
	if cmd.Flags().Changed("overlap") {
		chunking.OverlapTokens = ingestOverlap
	}

	jobIDs := make([]string, 0, len(args))
	for _, path := range args {
		job, err := ingestionService.Enqueue(cmd.Context(), driving.IngestRequest{
			DocumentID: ingestDocumentID,
			Path:       path,
			Options: domain.IngestOptions{
				ScopeID:     ingestScope,
				ContentType: ingestType,
				Chunking:    chunking,
			},
		})
		if err != nil {
			if errors.Is(err, domain.ErrQueueFull) {
				return fmt.Errorf("queue is full, retry later: %w", err)
			}
			return fmt.Errorf("failed to queue %s: %w", path, err)
		}
		cmd.Printf("Queued %s (job %s, document %s)\n", path, job.ID, job.DocumentID)
		jobIDs = append(jobIDs, job.ID)
	}

	if !ingestWait {
		return nil
	}
	return waitForJobs(cmd, jobIDs)
}

// waitForJobs polls until every job reaches a terminal state. A failed
// or cancelled job makes the command exit non-zero after all jobs have
// settled.
func waitForJobs(cmd *cobra.Command, jobIDs []string) error {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	pending := make(map[string]bool, len(jobIDs))
	for _, id := range jobIDs {
		pending[id] = true
	}

	var failed int
	for len(pending) > 0 {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-ticker.C:
		}

		for id := range pending {
			status, err := ingestionService.JobStatus(id)
			if err != nil {
				return fmt.Errorf("failed to get status for job %s: %w", id, err)
			}
			if !status.State.IsTerminal() {
				continue
			}
			delete(pending, id)
			switch status.State {
			case domain.JobCompleted:
				cmd.Printf("Job %s completed\n", id)
			case domain.JobCancelled:
				cmd.Printf("Job %s cancelled\n", id)
				failed++
			default:
				cmd.Printf("Job %s failed: %s\n", id, status.Error)
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d job(s) did not complete", failed)
	}
	return nil
}
