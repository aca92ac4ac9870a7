// Package filesystem implements the local directory connector. It
// walks a root directory for supported document files (.txt, .md,
// .pdf) and can watch the tree for changes to keep the index fresh
// without manual syncs.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/logger"
)

// supportedExtensions lists the file types the connector ingests,
// keyed by lowercase extension.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

// Connector walks a local directory tree and streams its files as
// documents.
type Connector struct {
	sourceID string
	rootPath string
}

var _ driven.Connector = (*Connector)(nil)

// New creates a filesystem connector rooted at rootPath.
func New(sourceID, rootPath string) *Connector {
	return &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
}

// NewFromSource creates a filesystem connector from a configured
// source. The "path" config key is required.
func NewFromSource(source domain.Source) (*Connector, error) {
	rootPath := source.Config["path"]
	if rootPath == "" {
		return nil, fmt.Errorf("%w: filesystem source requires a \"path\" config value", domain.ErrConfiguration)
	}
	return New(source.ID, rootPath), nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceTypeFilesystem
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsWatch:      true,
		SupportsValidation: true,
	}
}

// Validate checks the root path exists and is a readable directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: path %s does not exist", domain.ErrConfiguration, c.rootPath)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path %s is not a directory", domain.ErrConfiguration, c.rootPath)
	}
	if _, err := os.ReadDir(c.rootPath); err != nil {
		return fmt.Errorf("read %s: %w", c.rootPath, err)
	}
	return nil
}

// Fetch walks the directory tree and streams every supported file.
// Unreadable files are reported on the error channel without stopping
// the walk. Hidden files and directories are skipped.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			select {
			case errs <- err:
			case <-ctx.Done():
			}
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, entry fs.DirEntry, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				return c.report(ctx, errs, fmt.Errorf("walking %s: %w", path, err))
			}
			if isHidden(entry.Name()) && path != c.rootPath {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if entry.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}

			doc, err := c.loadDocument(path)
			if err != nil {
				return c.report(ctx, errs, fmt.Errorf("reading %s: %w", path, err))
			}
			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil && ctx.Err() == nil {
			select {
			case errs <- walkErr:
			case <-ctx.Done():
			}
		}
	}()

	return docs, errs
}

// Watch streams documents as files are created or modified under the
// root. New subdirectories are picked up automatically. The stream
// ends when the context is cancelled.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.Document, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := c.watchTree(watcher); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	docs := make(chan domain.Document)

	go func() {
		defer close(docs)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				c.handleEvent(ctx, watcher, event, docs)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watching %s: %v", c.rootPath, err)
			}
		}
	}()

	return docs, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// watchTree registers the root and every non-hidden subdirectory with
// the watcher.
func (c *Connector) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(c.rootPath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if !entry.IsDir() {
			return nil
		}
		if isHidden(entry.Name()) && path != c.rootPath {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleEvent turns a filesystem event into a document on the stream.
// Created directories are added to the watch set; unsupported files
// and failed reads are logged and skipped.
func (c *Connector) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, docs chan<- domain.Document) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(filepath.Base(event.Name)) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("watching new directory %s: %v", event.Name, err)
			}
		}
		return
	}
	if !supportedExtensions[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}

	doc, err := c.loadDocument(event.Name)
	if err != nil {
		logger.Warn("reading changed file %s: %v", event.Name, err)
		return
	}
	select {
	case docs <- doc:
	case <-ctx.Done():
	}
}

// loadDocument reads a file into a Document. The file URI is the
// document identity; the title is the path relative to the root so
// citations stay readable.
func (c *Connector) loadDocument(path string) (domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	var text string
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = extractPDFText(path)
	} else {
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	}
	if err != nil {
		return domain.Document{}, err
	}

	title, relErr := filepath.Rel(c.rootPath, path)
	if relErr != nil {
		title = filepath.Base(path)
	}

	return domain.Document{
		ID:    FileURI(abs),
		Title: title,
		Text:  text,
	}, nil
}

// report sends a per-file error without blocking past cancellation.
func (c *Connector) report(ctx context.Context, errs chan<- error, err error) error {
	select {
	case errs <- err:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
