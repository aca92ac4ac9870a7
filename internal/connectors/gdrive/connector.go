// Package gdrive implements the Google Drive connector. It lists the
// files of a configured folder through the Drive v3 API, exports
// Google Workspace documents to plain text and streams everything as
// documents keyed by file ID.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/logger"
)

// Google Workspace MIME types that need exporting before their text
// is usable.
const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"
)

// Export formats for Google Workspace files.
const (
	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

// maxContentSize caps downloaded file content at 5MB.
const maxContentSize = 5 * 1024 * 1024

// Google allows 10 requests/sec/user on the Drive API; stay under it.
const (
	requestsPerSecond = 8.0
	requestBurst      = 10
)

// Connector streams the files of a Drive folder as documents.
type Connector struct {
	sourceID string
	cfg      *Config
	svc      *drive.Service
	limiter  *rate.Limiter
}

var _ driven.Connector = (*Connector)(nil)

// New creates a Drive connector for the given source. Extra client
// options override the default token-based authentication, which
// tests use to point the connector at a fake API server.
func New(ctx context.Context, sourceID string, cfg *Config, opts ...option.ClientOption) (*Connector, error) {
	if len(opts) == 0 {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Connector{
		sourceID: sourceID,
		cfg:      cfg,
		svc:      svc,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceTypeGoogleDrive
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsValidation: true,
		RequiresAuth:       true,
	}
}

// Validate checks the configured folder exists and is reachable with
// the current credentials.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	file, err := c.svc.Files.Get(c.cfg.FolderID).Fields("id, mimeType").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("checking folder %s: %w", c.cfg.FolderID, wrapError(err))
	}
	if file.MimeType != mimeTypeFolder {
		return fmt.Errorf("%w: %s is not a drive folder", domain.ErrConfiguration, c.cfg.FolderID)
	}
	return nil
}

// Fetch lists the folder page by page and streams one document per
// file. Files whose content cannot be fetched are reported on the
// error channel without stopping the listing.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		pageToken := ""
		for {
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}

			list, err := c.listPage(ctx, pageToken)
			if err != nil {
				select {
				case errs <- fmt.Errorf("listing folder %s: %w", c.cfg.FolderID, wrapError(err)):
				case <-ctx.Done():
				}
				return
			}

			for _, file := range list.Files {
				if file.MimeType == mimeTypeFolder {
					continue
				}
				if err := c.limiter.Wait(ctx); err != nil {
					return
				}

				text, err := c.fileText(ctx, file)
				if err != nil {
					select {
					case errs <- fmt.Errorf("fetching %s (%s): %w", file.Name, file.Id, wrapError(err)):
					case <-ctx.Done():
						return
					}
					continue
				}

				select {
				case docs <- fileDocument(file, text):
				case <-ctx.Done():
					return
				}
			}

			pageToken = list.NextPageToken
			if pageToken == "" {
				return
			}
		}
	}()

	return docs, errs
}

// Watch is not supported for Drive sources.
func (c *Connector) Watch(_ context.Context) (<-chan domain.Document, error) {
	return nil, fmt.Errorf("%w: gdrive connector does not support watch", domain.ErrNotImplemented)
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}

// listPage fetches one page of non-trashed files in the folder.
func (c *Connector) listPage(ctx context.Context, pageToken string) (*drive.FileList, error) {
	call := c.svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed = false", c.cfg.FolderID)).
		Fields("nextPageToken, files(id, name, mimeType, size)").
		PageSize(c.cfg.PageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// fileText fetches a file's text content. Google Workspace files are
// exported; plain text files are downloaded; binaries and oversized
// files yield empty text and are skipped upstream as empty documents.
func (c *Connector) fileText(ctx context.Context, file *drive.File) (string, error) {
	switch file.MimeType {
	case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
		return c.export(ctx, file.Id, exportMimeText)
	case mimeTypeGoogleSheet:
		return c.export(ctx, file.Id, exportMimeCSV)
	}

	if !isTextMime(file.MimeType) || file.Size > maxContentSize {
		logger.Debug("skipping %s (%s): not a text file", file.Name, file.MimeType)
		return "", nil
	}

	resp, err := c.svc.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readLimited(resp.Body)
}

// export converts a Google Workspace file to the given MIME type.
func (c *Connector) export(ctx context.Context, fileID, mimeType string) (string, error) {
	resp, err := c.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	return readLimited(resp.Body)
}

// readLimited reads at most maxContentSize bytes.
func readLimited(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxContentSize))
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(raw), nil
}

// isTextMime reports whether the MIME type carries indexable text.
func isTextMime(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") ||
		mimeType == "application/json" ||
		mimeType == "application/xml"
}

// fileDocument converts a Drive file to a Document. The file ID is
// the stable identity; the name labels citations.
func fileDocument(file *drive.File, text string) domain.Document {
	return domain.Document{
		ID:    "gdrive://" + file.Id,
		Title: file.Name,
		Text:  text,
	}
}
