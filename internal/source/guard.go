package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/ratelimit"
)

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// Guard wraps an Adapter with the shared upstream discipline: every attempt
// passes the rate limiter first (exhausted budget fails fast, no upstream
// call), and transient failures retry up to 3 times with doubling backoff.
// Exhausted retries surface as ErrSourceUnavailable.
type Guard struct {
	inner   Adapter
	limiter ratelimit.Limiter
	logger  *zap.Logger
	backoff time.Duration
}

// NewGuard wraps the adapter.
func NewGuard(inner Adapter, limiter ratelimit.Limiter, logger *zap.Logger) *Guard {
	return &Guard{
		inner:   inner,
		limiter: limiter,
		logger:  logger.With(zap.String("source", inner.Name())),
		backoff: initialBackoff,
	}
}

func (g *Guard) Name() string { return g.inner.Name() }

func (g *Guard) Search(ctx context.Context, q model.SearchQuery) ([]model.RawListing, error) {
	var out []model.RawListing
	err := g.do(ctx, "search", func(ctx context.Context) error {
		var err error
		out, err = g.inner.Search(ctx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Guard) FetchDetail(ctx context.Context, externalID string) (*model.RawListing, error) {
	var out *model.RawListing
	err := g.do(ctx, "fetch_detail", func(ctx context.Context) error {
		var err error
		out, err = g.inner.FetchDetail(ctx, externalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Guard) do(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(g.backoff))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		// Budget check per attempt; a retry burns budget like any other call.
		if err := g.limiter.Allow(ctx, g.inner.Name()); err != nil {
			return err // not retryable: waiting out a backoff will not refill the window
		}

		if err := fn(ctx); err != nil {
			g.logger.Warn("upstream call failed",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, model.ErrRateLimited) {
		return err
	}
	return fmt.Errorf("%w: %s %s after %d attempts: %v", model.ErrSourceUnavailable, g.inner.Name(), op, attempt, err)
}
