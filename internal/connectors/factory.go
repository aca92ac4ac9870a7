package connectors

import (
	"context"
	"fmt"

	"github.com/quarry-labs/quarry/internal/connectors/filesystem"
	"github.com/quarry-labs/quarry/internal/connectors/gdrive"
	"github.com/quarry-labs/quarry/internal/connectors/web"
	"github.com/quarry-labs/quarry/internal/core/domain"
	"github.com/quarry-labs/quarry/internal/core/ports/driven"
)

// Factory builds connectors from configured sources.
type Factory struct{}

var _ driven.ConnectorFactory = (*Factory)(nil)

// NewFactory creates a connector factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Create builds the connector for the source's type. Unknown types
// return domain.ErrUnsupportedType.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	switch source.Type {
	case domain.SourceTypeWeb:
		cfg, err := web.ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return web.New(source.ID, cfg)

	case domain.SourceTypeFilesystem:
		return filesystem.NewFromSource(source)

	case domain.SourceTypeGoogleDrive:
		cfg, err := gdrive.ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return gdrive.New(ctx, source.ID, cfg)

	default:
		return nil, fmt.Errorf("%w: connector type %q", domain.ErrUnsupportedType, source.Type)
	}
}
