package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/ratelimit"
)

type scriptedAdapter struct {
	name     string
	calls    int
	failures int // fail this many calls before succeeding
	listings []model.RawListing
}

func (s *scriptedAdapter) Name() string { return s.name }

func (s *scriptedAdapter) Search(_ context.Context, _ model.SearchQuery) ([]model.RawListing, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("upstream 503")
	}
	return s.listings, nil
}

func (s *scriptedAdapter) FetchDetail(_ context.Context, id string) (*model.RawListing, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("upstream 503")
	}
	for i := range s.listings {
		if s.listings[i].ExternalID == id {
			return &s.listings[i], nil
		}
	}
	return nil, nil
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string) error { return nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) error { return model.ErrRateLimited }

func newTestGuard(inner Adapter, lim ratelimit.Limiter) *Guard {
	g := NewGuard(inner, lim, zap.NewNop())
	g.backoff = time.Millisecond
	return g
}

// ── Rate limiting ──────────────────────────────────────────────────────────

func TestGuardSearch_RateLimitedFailsFastWithoutUpstreamCall(t *testing.T) {
	inner := &scriptedAdapter{name: "adzuna"}
	g := newTestGuard(inner, denyAll{})

	_, err := g.Search(context.Background(), model.SearchQuery{})
	if !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("want ErrRateLimited, got %v", err)
	}
	if inner.calls != 0 {
		t.Fatalf("rate-limited call must not reach the upstream, calls=%d", inner.calls)
	}
}

// ── Retry ──────────────────────────────────────────────────────────────────

func TestGuardSearch_RetriesThenSucceeds(t *testing.T) {
	inner := &scriptedAdapter{
		name:     "adzuna",
		failures: 2,
		listings: []model.RawListing{{ExternalID: "1", Source: "adzuna", Title: "Dev"}},
	}
	g := newTestGuard(inner, allowAll{})

	got, err := g.Search(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 listing, got %d", len(got))
	}
	if inner.calls != 3 {
		t.Fatalf("want 3 attempts, got %d", inner.calls)
	}
}

func TestGuardSearch_ExhaustedRetriesReportSourceUnavailable(t *testing.T) {
	inner := &scriptedAdapter{name: "adzuna", failures: 10}
	g := newTestGuard(inner, allowAll{})

	_, err := g.Search(context.Background(), model.SearchQuery{})
	if !errors.Is(err, model.ErrSourceUnavailable) {
		t.Fatalf("want ErrSourceUnavailable, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("want exactly 3 attempts, got %d", inner.calls)
	}
}

func TestGuardFetchDetail_Passthrough(t *testing.T) {
	inner := &scriptedAdapter{
		name:     "remotive",
		listings: []model.RawListing{{ExternalID: "42", Source: "remotive", Title: "Dev"}},
	}
	g := newTestGuard(inner, allowAll{})

	got, err := g.FetchDetail(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ExternalID != "42" {
		t.Fatalf("got %+v", got)
	}

	missing, err := g.FetchDetail(context.Background(), "nope")
	if err != nil || missing != nil {
		t.Fatalf("unknown id must be (nil, nil), got (%v, %v)", missing, err)
	}
}
