package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [source-id]",
	Short: "Ingest documents from sources into the index",
	Long: `Fetches documents from configured sources, chunks and embeds them
and writes the vectors to the index. With a source ID only that source
is synced; otherwise all sources are.

Re-syncing is idempotent: unchanged documents overwrite their own
records, shrunk documents have their stale chunks pruned.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		sourceID := args[0]
		report, err := syncWithProgress(ctx, cmd, sourceID)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		printReport(cmd, report)
		return nil
	}

	cmd.Println("Syncing all sources...")
	report, err := syncOrchestrator.SyncAll(ctx)
	if err != nil && report == nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("sync finished with errors: %w", err)
	}
	return nil
}

// syncWithProgress runs a single-source sync while displaying a
// progress spinner fed by the orchestrator's status counters.
func syncWithProgress(ctx context.Context, cmd *cobra.Command, sourceID string) (*domain.IngestReport, error) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(cmd.OutOrStdout()),
		progressbar.OptionSetDescription(fmt.Sprintf("syncing %s", sourceID)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	type result struct {
		report *domain.IngestReport
		err    error
	}
	done := make(chan result, 1)
	go func() {
		report, err := syncOrchestrator.Sync(ctx, sourceID)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case res := <-done:
			_ = bar.Finish()
			return res.report, res.err
		case <-ticker.C:
			status, err := syncOrchestrator.Status(ctx, sourceID)
			if err == nil && status != nil {
				_ = bar.Set(status.DocumentsProcessed)
			}
		}
	}
}

// printReport summarises a sync run, listing per-document failures.
func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	if report == nil {
		return
	}

	cmd.Printf("Sync complete: %d indexed, %d skipped, %d failed\n",
		report.Processed, report.Skipped, report.FailureCount())

	for _, failure := range report.Failures {
		cmd.Printf("  failed %s (at %s): %v\n", failure.DocumentID, failure.Stage, failure.Err)
	}
}
