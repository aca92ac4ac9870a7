package gdrive

import (
	"fmt"
	"os"
	"strconv"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// DefaultPageSize is the page size for Drive file listing requests.
const DefaultPageSize int64 = 100

// Config holds Google Drive connector configuration.
type Config struct {
	// FolderID is the Drive folder whose files are synced.
	FolderID string

	// AccessToken is the OAuth2 access token used to call the Drive
	// API.
	AccessToken string

	// PageSize is the page size for listing requests.
	PageSize int64
}

// ParseConfig extracts Drive configuration from a Source. The
// "folder_id" key is required; the access token comes from the
// "access_token" key or the GDRIVE_ACCESS_TOKEN environment variable.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := &Config{
		FolderID:    source.Config["folder_id"],
		AccessToken: source.Config["access_token"],
		PageSize:    DefaultPageSize,
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("GDRIVE_ACCESS_TOKEN")
	}

	if cfg.FolderID == "" {
		return nil, fmt.Errorf("%w: gdrive source requires a \"folder_id\" config value", domain.ErrConfiguration)
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: gdrive source requires an \"access_token\" config value", domain.ErrConfiguration)
	}

	if val := source.Config["page_size"]; val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid page_size %q", domain.ErrConfiguration, val)
		}
		cfg.PageSize = n
	}

	return cfg, nil
}
