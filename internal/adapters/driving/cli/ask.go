package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded on the indexed documents",
	Long: `Retrieves the most relevant indexed chunks for the question, feeds
them to the configured language model and prints the answer with its
references.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	answer, err := askService.Ask(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAskJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.References) > 0 {
		cmd.Println()
		cmd.Println("References:")
		for i, ref := range answer.References {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, ref.Source, ref.Score)
		}
	}
	return nil
}

func outputAskJSON(cmd *cobra.Command, answer *domain.Answer) error {
	type referenceJSON struct {
		Source string  `json:"source"`
		Score  float64 `json:"score"`
	}
	refs := make([]referenceJSON, len(answer.References))
	for i, ref := range answer.References {
		refs[i] = referenceJSON{Source: ref.Source, Score: ref.Score}
	}

	payload := struct {
		Answer     string          `json:"answer"`
		References []referenceJSON `json:"references"`
	}{
		Answer:     answer.Text,
		References: refs,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
