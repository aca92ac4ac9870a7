package driven

import (
	"context"

	"github.com/quarry-labs/quarry/internal/core/domain"
)

// Connector fetches documents from a data source. Each connector type
// (web, gdrive, filesystem) implements this interface and yields
// uniform domain.Document records; fetching and auth internals are
// opaque to the core. A connector error aborts only that document's
// ingestion, never the batch.
type Connector interface {
	// Type returns the connector type identifier.
	Type() domain.SourceType

	// SourceID returns the configured source ID.
	SourceID() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks the connector is properly configured and ready
	// to fetch. For API connectors this makes a test call; for
	// filesystem it checks the path is readable.
	Validate(ctx context.Context) error

	// Fetch streams all documents from the source. Both channels are
	// closed when fetching completes; per-document errors are sent on
	// the error channel without stopping the stream.
	Fetch(ctx context.Context) (<-chan domain.Document, <-chan error)

	// Watch listens for changed documents in real time. Only
	// available if SupportsWatch is true; otherwise it returns
	// domain.ErrNotImplemented.
	Watch(ctx context.Context) (<-chan domain.Document, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsWatch indicates the connector can push change events.
	SupportsWatch bool

	// SupportsValidation indicates Validate() performs a real check.
	SupportsValidation bool

	// RequiresAuth indicates the connector needs credentials.
	RequiresAuth bool
}

// ConnectorFactory creates a connector for a configured source.
type ConnectorFactory interface {
	// Create builds the connector for the source. Unknown source
	// types return domain.ErrUnsupportedType.
	Create(ctx context.Context, source domain.Source) (Connector, error)
}
