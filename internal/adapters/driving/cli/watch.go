package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quarrydev/quarry/internal/adapters/driven/contentsource/filesystem"
	"github.com/quarrydev/quarry/internal/core/domain"
	"github.com/quarrydev/quarry/internal/core/ports/driving"
	"github.com/quarrydev/quarry/internal/logger"
)

var watchScope string

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and re-ingest files as they change",
	Long: `Watches a directory tree and queues an ingestion job whenever a file
is created or modified. Events are debounced so editors that write in
bursts trigger one job per file. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchScope, "scope", "s", "", "scope to ingest into (required)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}
	if watchScope == "" {
		return errors.New("--scope is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(args[0], func(path string) {
		_, err := ingestionService.Enqueue(ctx, driving.IngestRequest{
			Path: path,
			Options: domain.IngestOptions{
				ScopeID: watchScope,
			},
		})
		if err != nil {
			logger.Warn("Failed to queue %s: %v", path, err)
			return
		}
		logger.Info("Queued %s", path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", args[0], err)
	}
	defer watcher.Close()

	if documentService != nil {
		watcher.OnRemove(func(path string) {
			docs, err := documentService.List(ctx, watchScope, path)
			if err != nil {
				logger.Warn("Failed to look up %s: %v", path, err)
				return
			}
			for _, doc := range docs {
				if doc.Path != path {
					continue
				}
				if err := documentService.Delete(ctx, doc.ID); err != nil {
					logger.Warn("Failed to delete %s: %v", doc.ID, err)
					continue
				}
				logger.Info("Removed %s", path)
			}
		})
	}

	cmd.Printf("Watching %s (scope %s), press Ctrl-C to stop\n", args[0], watchScope)

	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
