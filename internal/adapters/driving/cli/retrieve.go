package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var retrieveTopK int

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the chunks retrieval would feed the model",
	Long: `Runs the retrieval half of ask without generating an answer: embeds
the query, searches the index and prints the matching chunks in rank
order. Useful for judging index quality.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of matches to retrieve (0 = default)")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retriever == nil {
		return errors.New("retriever not configured")
	}

	bundle, err := retriever.Retrieve(context.Background(), args[0], retrieveTopK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	if len(bundle.Rendered) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	for _, rendered := range bundle.Rendered {
		cmd.Println(rendered.String())
		cmd.Println()
	}
	return nil
}
