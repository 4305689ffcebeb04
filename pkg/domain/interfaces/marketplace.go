package interfaces

import (
	"context"

	"github.com/m-mizutani/vsget/pkg/domain/model"
)

// MarketplaceClient is the gallery API surface the use cases depend on.
type MarketplaceClient interface {
	// Search runs one extension query and returns the candidates of the
	// requested page in gallery order.
	Search(ctx context.Context, query model.SearchQuery) ([]*model.Candidate, error)

	// Fetch opens the package stream for the target. The caller owns the
	// returned payload body and must close it.
	Fetch(ctx context.Context, target *model.DownloadTarget) (*model.Payload, error)
}
