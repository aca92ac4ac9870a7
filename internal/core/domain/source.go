package domain

import "time"

// SourceType identifies a connector implementation.
type SourceType string

// Supported source types.
const (
	// SourceTypeWeb crawls a website within its domain.
	SourceTypeWeb SourceType = "web"

	// SourceTypeGoogleDrive fetches files from a Drive folder.
	SourceTypeGoogleDrive SourceType = "gdrive"

	// SourceTypeFilesystem walks a local directory.
	SourceTypeFilesystem SourceType = "filesystem"
)

// IsValid returns true if the source type is recognised.
func (t SourceType) IsValid() bool {
	switch t {
	case SourceTypeWeb, SourceTypeGoogleDrive, SourceTypeFilesystem:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Source represents a configured data source. Each source produces
// documents via a connector during sync.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Type identifies the connector type.
	Type SourceType

	// Name is the human-readable name for this source.
	Name string

	// Config contains connector-specific configuration: "url" and
	// "max_pages" for web, "folder_id" for gdrive, "path" for
	// filesystem.
	Config map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}
