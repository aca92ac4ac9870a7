package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [source-id]",
	Short: "Watch a source and re-index documents as they change",
	Long: `Subscribes to a source's change stream and re-ingests every changed
document immediately, keeping the index fresh without manual syncs.
Only filesystem sources support watching. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceID := args[0]
	cmd.Printf("Watching source %s (ctrl-c to stop)...\n", sourceID)

	err := syncOrchestrator.Watch(ctx, sourceID)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Watch stopped.")
	return nil
}
