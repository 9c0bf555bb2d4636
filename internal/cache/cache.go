// Package cache memoizes search result pages for a fixed TTL.
// Bounded staleness up to the TTL is an accepted trade-off: new job arrival
// never invalidates; only an explicit saved-job mutation does.
package cache

import (
	"context"

	"joblens/catalog-service/internal/model"
)

// Cache stores one result page per query fingerprint.
// GetPage returns (nil, nil) on a miss; cache errors are never fatal to a
// search, callers log and continue.
type Cache interface {
	GetPage(ctx context.Context, fingerprint string) (*model.SearchResult, error)
	SetPage(ctx context.Context, fingerprint string, page *model.SearchResult) error
	Invalidate(ctx context.Context, fingerprint string) error
}
