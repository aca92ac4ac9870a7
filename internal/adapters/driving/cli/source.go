package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

var (
	sourceName     string
	sourceURL      string
	sourcePath     string
	sourceFolderID string
	sourceToken    string
	sourceMaxPages int
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage document sources",
	Long:  `Add, list and remove the sources quarry syncs documents from.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [type]",
	Short: "Add a source (web, gdrive or filesystem)",
	Long: `Registers a new source of the given connector type.

  quarry source add web --name docs --url https://example.com/
  quarry source add gdrive --name shared --folder-id <id> --access-token <token>
  quarry source add filesystem --name notes --path ~/notes`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

func init() {
	sourceAddCmd.Flags().StringVar(&sourceName, "name", "", "human-readable source name")
	sourceAddCmd.Flags().StringVar(&sourceURL, "url", "", "start URL (web sources)")
	sourceAddCmd.Flags().IntVar(&sourceMaxPages, "max-pages", 0, "crawl page cap (web sources)")
	sourceAddCmd.Flags().StringVar(&sourcePath, "path", "", "root directory (filesystem sources)")
	sourceAddCmd.Flags().StringVar(&sourceFolderID, "folder-id", "", "Drive folder ID (gdrive sources)")
	sourceAddCmd.Flags().StringVar(&sourceToken, "access-token", "", "OAuth access token (gdrive sources)")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	sourceType := domain.SourceType(args[0])
	if !sourceType.IsValid() {
		return fmt.Errorf("unknown source type %q (expected web, gdrive or filesystem)", args[0])
	}

	config, err := sourceConfig(sourceType)
	if err != nil {
		return err
	}

	name := sourceName
	if name == "" {
		name = string(sourceType)
	}

	source := domain.Source{
		ID:     uuid.New().String(),
		Type:   sourceType,
		Name:   name,
		Config: config,
	}

	if err := sourceStore.Save(context.Background(), source); err != nil {
		return fmt.Errorf("saving source: %w", err)
	}

	cmd.Printf("Added %s source %q (%s)\n", source.Type, source.Name, source.ID)
	return nil
}

// sourceConfig builds the connector config map from the type-specific
// flags, failing on missing required values.
func sourceConfig(sourceType domain.SourceType) (map[string]string, error) {
	config := make(map[string]string)

	switch sourceType {
	case domain.SourceTypeWeb:
		if sourceURL == "" {
			return nil, errors.New("web sources require --url")
		}
		config["url"] = sourceURL
		if sourceMaxPages > 0 {
			config["max_pages"] = fmt.Sprintf("%d", sourceMaxPages)
		}

	case domain.SourceTypeFilesystem:
		if sourcePath == "" {
			return nil, errors.New("filesystem sources require --path")
		}
		config["path"] = sourcePath

	case domain.SourceTypeGoogleDrive:
		if sourceFolderID == "" {
			return nil, errors.New("gdrive sources require --folder-id")
		}
		if sourceToken == "" {
			return nil, errors.New("gdrive sources require --access-token")
		}
		config["folder_id"] = sourceFolderID
		config["access_token"] = sourceToken
	}

	return config, nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	sources, err := sourceStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources configured.")
		return nil
	}

	cmd.Println("Configured sources:")
	for _, source := range sources {
		cmd.Printf("  %s  %-10s  %s\n", source.ID, source.Type, source.Name)
	}
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	sourceID := args[0]
	if _, err := sourceStore.Get(context.Background(), sourceID); err != nil {
		return fmt.Errorf("looking up source %s: %w", sourceID, err)
	}
	if err := sourceStore.Delete(context.Background(), sourceID); err != nil {
		return fmt.Errorf("removing source %s: %w", sourceID, err)
	}

	cmd.Printf("Removed source %s\n", sourceID)
	return nil
}
