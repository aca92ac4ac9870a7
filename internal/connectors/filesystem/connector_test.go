package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collectDocs(t *testing.T, connector *Connector) ([]domain.Document, []error) {
	t.Helper()
	docsChan, errsChan := connector.Fetch(context.Background())

	var docs []domain.Document
	var errs []error
	for docsChan != nil || errsChan != nil {
		select {
		case doc, ok := <-docsChan:
			if !ok {
				docsChan = nil
				continue
			}
			docs = append(docs, doc)
		case err, ok := <-errsChan:
			if !ok {
				errsChan = nil
				continue
			}
			errs = append(errs, err)
		}
	}
	return docs, errs
}

func TestNewFromSource(t *testing.T) {
	connector, err := NewFromSource(domain.Source{
		ID:     "src-1",
		Type:   domain.SourceTypeFilesystem,
		Config: map[string]string{"path": "/tmp/docs"},
	})

	require.NoError(t, err)
	assert.Equal(t, "src-1", connector.SourceID())
	assert.Equal(t, domain.SourceTypeFilesystem, connector.Type())
}

func TestNewFromSource_MissingPath(t *testing.T) {
	_, err := NewFromSource(domain.Source{ID: "src-1", Config: map[string]string{}})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestConnector_Fetch_CollectsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "plain notes")
	writeFile(t, dir, "guide.md", "# Guide")
	writeFile(t, dir, "main.go", "package main")

	connector := New("src-1", dir)
	docs, errs := collectDocs(t, connector)

	assert.Empty(t, errs)
	require.Len(t, docs, 2)

	titles := []string{docs[0].Title, docs[1].Title}
	assert.ElementsMatch(t, []string{"notes.txt", "guide.md"}, titles)
}

func TestConnector_Fetch_WalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("docs", "deep", "readme.md"), "nested")

	connector := New("src-1", dir)
	docs, errs := collectDocs(t, connector)

	assert.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join("docs", "deep", "readme.md"), docs[0].Title)
	assert.Equal(t, "nested", docs[0].Text)
}

func TestConnector_Fetch_SkipsHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.txt", "visible")
	writeFile(t, dir, ".hidden.txt", "hidden")
	writeFile(t, dir, filepath.Join(".git", "config.txt"), "internal")

	connector := New("src-1", dir)
	docs, errs := collectDocs(t, connector)

	assert.Empty(t, errs)
	require.Len(t, docs, 1)
	assert.Equal(t, "visible.txt", docs[0].Title)
}

func TestConnector_Fetch_DocumentIdentity(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello")

	connector := New("src-1", dir)
	docs, _ := collectDocs(t, connector)

	require.Len(t, docs, 1)
	assert.Equal(t, FileURI(path), docs[0].ID)
	assert.Equal(t, "hello", docs[0].Text)
}

func TestConnector_Fetch_NonExistentDirectory(t *testing.T) {
	connector := New("src-1", "/non/existent/path")
	docs, errs := collectDocs(t, connector)

	assert.Empty(t, docs)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrConfiguration)
	assert.Contains(t, errs[0].Error(), "does not exist")
}

func TestConnector_Fetch_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "hello")

	connector := New("src-1", dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docsChan, errsChan := connector.Fetch(ctx)
	for range docsChan {
	}
	for range errsChan {
	}
}

func TestConnector_Validate(t *testing.T) {
	connector := New("src-1", t.TempDir())
	assert.NoError(t, connector.Validate(context.Background()))
}

func TestConnector_Validate_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file.txt", "x")

	connector := New("src-1", path)
	err := connector.Validate(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestConnector_Capabilities(t *testing.T) {
	caps := New("src-1", "/tmp").Capabilities()

	assert.True(t, caps.SupportsWatch)
	assert.True(t, caps.SupportsValidation)
	assert.False(t, caps.RequiresAuth)
}

func TestConnector_Watch_EmitsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	connector := New("src-1", dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := connector.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "fresh.txt", "just written")

	select {
	case doc := <-docs:
		assert.Equal(t, "fresh.txt", doc.Title)
		assert.Equal(t, "just written", doc.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a document from the watch stream")
	}
}

func TestConnector_Watch_IgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	connector := New("src-1", dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, err := connector.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "binary.bin", "not a document")
	writeFile(t, dir, "notes.txt", "a document")

	select {
	case doc := <-docs:
		assert.Equal(t, "notes.txt", doc.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a document from the watch stream")
	}
}

func TestConnector_Watch_ClosesOnCancel(t *testing.T) {
	connector := New("src-1", t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	docs, err := connector.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-docs:
		assert.False(t, ok, "stream should close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("watch stream did not close")
	}
}

func TestFileURI_RoundTrip(t *testing.T) {
	assert.Equal(t, "file:///data/notes.txt", FileURI("/data/notes.txt"))
	assert.Equal(t, "file:///data/notes.txt", FileURI("file:///data/notes.txt"))
	assert.Equal(t, "/data/notes.txt", PathFromURI("file:///data/notes.txt"))
	assert.Equal(t, "/data/notes.txt", PathFromURI("/data/notes.txt"))
}
