// Package web implements the web crawler connector. It performs a
// breadth-first crawl from a start URL, staying on the same host,
// visiting at most MaxPages pages with a politeness delay between
// fetches, and yields one Document per HTML page.
package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
	"github.com/quarry-labs/quarry/internal/logger"
)

// Connector crawls a website and streams its pages as documents.
type Connector struct {
	sourceID string
	cfg      *Config
	client   *http.Client
	start    *url.URL
}

var _ driven.Connector = (*Connector)(nil)

// New creates a web connector for the given source.
func New(sourceID string, cfg *Config) (*Connector, error) {
	start, err := url.Parse(cfg.StartURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start url %q", domain.ErrConfiguration, cfg.StartURL)
	}

	return &Connector{
		sourceID: sourceID,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		start:    start,
	}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() domain.SourceType {
	return domain.SourceTypeWeb
}

// SourceID returns the configured source ID.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns what this connector supports.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsValidation: true,
	}
}

// Validate fetches the start URL and checks it serves HTML.
func (c *Connector) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.StartURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch start url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("start url returned status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return fmt.Errorf("start url is not an HTML page (content-type %q)", resp.Header.Get("Content-Type"))
	}
	return nil
}

// Fetch crawls breadth-first from the start URL. Pages that fail to
// fetch or parse are reported on the error channel without stopping
// the crawl.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error)

	go func() {
		defer close(docs)
		defer close(errs)

		queue := []string{c.start.String()}
		visited := make(map[string]bool)

		for len(queue) > 0 && len(visited) < c.cfg.MaxPages {
			select {
			case <-ctx.Done():
				return
			default:
			}

			pageURL := queue[0]
			queue = queue[1:]
			if visited[pageURL] {
				continue
			}
			visited[pageURL] = true

			p, err := c.fetchPage(ctx, pageURL)
			if err != nil {
				select {
				case errs <- fmt.Errorf("crawling %s: %w", pageURL, err):
				case <-ctx.Done():
					return
				}
			} else if p != nil {
				doc := pageDocument(pageURL, p)
				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
				queue = c.enqueueLinks(queue, visited, p.Links)
			}

			if !c.pause(ctx) {
				return
			}
		}
		logger.Debug("crawl of %s finished after %d page(s)", c.start.Host, len(visited))
	}()

	return docs, errs
}

// Watch is not supported for web sources.
func (c *Connector) Watch(_ context.Context) (<-chan domain.Document, error) {
	return nil, fmt.Errorf("%w: web connector does not support watch", domain.ErrNotImplemented)
}

// Close releases resources.
func (c *Connector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// fetchPage downloads and parses a single page. Non-HTML responses
// return (nil, nil) and are skipped silently.
func (c *Connector) fetchPage(ctx context.Context, pageURL string) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	p, err := parsePage(resp.Body, base)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return p, nil
}

// enqueueLinks appends unvisited same-host links to the crawl queue.
func (c *Connector) enqueueLinks(queue []string, visited map[string]bool, links []string) []string {
	for _, link := range links {
		parsed, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !sameHost(c.start.Hostname(), parsed) {
			continue
		}
		if !visited[link] {
			queue = append(queue, link)
		}
	}
	return queue
}

// pause waits out the politeness delay. Returns false if the context
// was cancelled during the wait.
func (c *Connector) pause(ctx context.Context) bool {
	if c.cfg.Delay <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.cfg.Delay):
		return true
	}
}

// pageDocument converts a parsed page into a Document. The URL is the
// document identity; the title falls back to the URL when the page
// has none.
func pageDocument(pageURL string, p *page) domain.Document {
	title := p.Title
	if title == "" {
		title = pageURL
	}
	return domain.Document{
		ID:    pageURL,
		Title: title,
		Text:  p.Text,
	}
}
