// Package source translates external job boards into raw listings.
// Adding a board means implementing Adapter; the aggregator never changes.
package source

import (
	"context"

	"joblens/catalog-service/internal/model"
)

// Adapter is the single capability set every upstream implements.
// Search returns whatever the board has for a query; FetchDetail resolves
// one listing by its board-local id and may return (nil, nil) when the board
// no longer knows it.
type Adapter interface {
	Name() string
	Search(ctx context.Context, q model.SearchQuery) ([]model.RawListing, error)
	FetchDetail(ctx context.Context, externalID string) (*model.RawListing, error)
}
