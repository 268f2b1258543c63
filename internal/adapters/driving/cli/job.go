package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/core/domain"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and cancel ingestion jobs",
}

var jobStatusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the status of a job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobStatus,
}

var jobCancelCmd = &cobra.Command{
	Use:   "cancel [document-id]",
	Short: "Cancel the job running or queued for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobCancel,
}

func init() {
	jobCmd.AddCommand(jobStatusCmd)
	jobCmd.AddCommand(jobCancelCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobStatus(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	status, err := ingestionService.JobStatus(args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("job %s not found", args[0])
		}
		return fmt.Errorf("failed to get job status: %w", err)
	}

	cmd.Printf("Job: %s\n\n", status.JobID)
	cmd.Printf("  Document: %s\n", status.DocumentID)
	cmd.Printf("  State:    %s\n", status.State)
	if status.State == domain.JobProcessing {
		cmd.Printf("  Phase:    %s (%d%%)\n", status.Phase, status.Percent)
	}
	if status.Error != "" {
		cmd.Printf("  Error:    %s\n", status.Error)
	}
	if !status.StartedAt.IsZero() {
		cmd.Printf("  Started:  %s\n", status.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if !status.CompletedAt.IsZero() {
		cmd.Printf("  Finished: %s\n", status.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runJobCancel(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	if ingestionService.CancelDocument(args[0]) {
		cmd.Printf("Cancelled job for document %s\n", args[0])
		return nil
	}
	cmd.Printf("No job in flight for document %s\n", args[0])
	return nil
}
