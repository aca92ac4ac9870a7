package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

func resetSourceFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		sourceName, sourceURL, sourcePath = "", "", ""
		sourceFolderID, sourceToken = "", ""
		sourceMaxPages = 0
	})
}

func TestSourceCmd_Use(t *testing.T) {
	assert.Equal(t, "source", sourceCmd.Use)
}

func TestSourceCmd_HasSubcommands(t *testing.T) {
	commandNames := make([]string, 0)
	for _, cmd := range sourceCmd.Commands() {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "remove")
}

func TestSourceAddCmd_AddsWebSource(t *testing.T) {
	_, _, _, sources := setupTestServices(t)
	resetSourceFlags(t)

	out, err := executeCommand(t, "source", "add", "web",
		"--name", "docs", "--url", "https://example.com/", "--max-pages", "10")

	require.NoError(t, err)
	assert.Contains(t, out, "Added web source \"docs\"")

	stored, err := sources.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.SourceTypeWeb, stored[0].Type)
	assert.Equal(t, "https://example.com/", stored[0].Config["url"])
	assert.Equal(t, "10", stored[0].Config["max_pages"])
	assert.NotEmpty(t, stored[0].ID)
}

func TestSourceAddCmd_AddsFilesystemSource(t *testing.T) {
	_, _, _, sources := setupTestServices(t)
	resetSourceFlags(t)

	_, err := executeCommand(t, "source", "add", "filesystem", "--path", "/data/notes")

	require.NoError(t, err)
	stored, _ := sources.List(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, "/data/notes", stored[0].Config["path"])
	assert.Equal(t, "filesystem", stored[0].Name) // defaults to the type
}

func TestSourceAddCmd_RejectsUnknownType(t *testing.T) {
	setupTestServices(t)
	resetSourceFlags(t)

	_, err := executeCommand(t, "source", "add", "carrier-pigeon")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source type")
}

func TestSourceAddCmd_RequiresURLForWeb(t *testing.T) {
	setupTestServices(t)
	resetSourceFlags(t)

	_, err := executeCommand(t, "source", "add", "web", "--name", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "require --url")
}

func TestSourceAddCmd_RequiresCredentialsForDrive(t *testing.T) {
	setupTestServices(t)
	resetSourceFlags(t)

	_, err := executeCommand(t, "source", "add", "gdrive", "--folder-id", "f1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "require --access-token")
}

func TestSourceAddCmd_ErrorsWithoutStore(t *testing.T) {
	setupTestServices(t)
	resetSourceFlags(t)
	sourceStore = nil

	_, err := executeCommand(t, "source", "add", "web", "--url", "https://example.com/")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSourceListCmd_PrintsSources(t *testing.T) {
	_, _, _, sources := setupTestServices(t)
	sources.sources["id-1"] = domain.Source{
		ID: "id-1", Type: domain.SourceTypeWeb, Name: "docs",
	}

	out, err := executeCommand(t, "source", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Configured sources:")
	assert.Contains(t, out, "id-1")
	assert.Contains(t, out, "docs")
}

func TestSourceListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, "source", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No sources configured.")
}

func TestSourceRemoveCmd_RemovesSource(t *testing.T) {
	_, _, _, sources := setupTestServices(t)
	sources.sources["id-1"] = domain.Source{ID: "id-1", Type: domain.SourceTypeWeb}

	out, err := executeCommand(t, "source", "remove", "id-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed source id-1")
	assert.Empty(t, sources.sources)
}

func TestSourceRemoveCmd_UnknownSource(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "source", "remove", "missing-id")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
