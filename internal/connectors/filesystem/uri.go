package filesystem

import "strings"

// FileURI converts a local path to a file:// URI. Used as the stable
// document identity so the same file always maps to the same indexed
// records.
func FileURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + path
}

// PathFromURI converts a file:// URI back to a local path for
// opening. Bare paths pass through unchanged.
func PathFromURI(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
