// Package cli implements the quarry command-line interface. Commands
// hold no business logic: they parse arguments, call the core
// services through the driving ports and format the results.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/core/ports/driving"
	"github.com/quarry-labs/quarry/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute. Commands fail with a
// clear error when a required service is missing.
var (
	askService       driving.AskService
	retriever        driving.Retriever
	syncOrchestrator driving.SyncOrchestrator
	sourceStore      driven.SourceStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Retrieval-augmented question answering over your documents",
	Long: `Quarry indexes documents from websites, Google Drive folders and
local directories, then answers questions grounded on what it found.

Add a source, sync it, then ask:

  quarry source add web --name docs --url https://example.com/
  quarry sync
  quarry ask "how do I configure the embedder?"`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the core services the commands depend on.
func SetServices(
	ask driving.AskService,
	ret driving.Retriever,
	sync driving.SyncOrchestrator,
	sources driven.SourceStore,
) {
	askService = ask
	retriever = ret
	syncOrchestrator = sync
	sourceStore = sources
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
