package web

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// DefaultMaxPages caps how many pages a single crawl may visit.
const DefaultMaxPages = 40

// DefaultDelay is the politeness delay between page fetches.
const DefaultDelay = time.Second

// Config holds web crawler configuration.
type Config struct {
	// StartURL is where the crawl begins. Only pages on the same
	// host are followed.
	StartURL string

	// MaxPages limits how many pages are visited per crawl.
	MaxPages int

	// Delay is the pause between consecutive page fetches.
	Delay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// DefaultConfig returns the default crawler configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxPages: DefaultMaxPages,
		Delay:    DefaultDelay,
		Timeout:  10 * time.Second,
	}
}

// ParseConfig extracts crawler configuration from a Source.
// The "url" key is required; "max_pages" and "delay_ms" are optional.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := DefaultConfig()

	cfg.StartURL = source.Config["url"]
	if cfg.StartURL == "" {
		return nil, fmt.Errorf("%w: web source requires a \"url\" config value", domain.ErrConfiguration)
	}
	parsed, err := url.Parse(cfg.StartURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: invalid start url %q", domain.ErrConfiguration, cfg.StartURL)
	}

	if val := source.Config["max_pages"]; val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid max_pages %q", domain.ErrConfiguration, val)
		}
		cfg.MaxPages = n
	}

	if val := source.Config["delay_ms"]; val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid delay_ms %q", domain.ErrConfiguration, val)
		}
		cfg.Delay = time.Duration(n) * time.Millisecond
	}

	return cfg, nil
}
