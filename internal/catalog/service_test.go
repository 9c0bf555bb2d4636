package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"joblens/catalog-service/internal/cache"
	"joblens/catalog-service/internal/catalog"
	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/source"
	"joblens/catalog-service/internal/store"
)

type fakeAdapter struct {
	name     string
	listings []model.RawListing
	err      error
	searches int
	details  int
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(_ context.Context, _ model.SearchQuery) ([]model.RawListing, error) {
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

func (f *fakeAdapter) FetchDetail(_ context.Context, id string) (*model.RawListing, error) {
	f.details++
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.listings {
		if f.listings[i].ExternalID == id {
			return &f.listings[i], nil
		}
	}
	return nil, nil
}

func acmeListing(sourceName, id string, rich bool) model.RawListing {
	l := model.RawListing{
		ExternalID:  id,
		Source:      sourceName,
		Title:       "Senior Backend Engineer",
		Company:     "Acme Corp",
		Location:    "New York, NY",
		Description: "Build Go services",
		PostedAt:    "2026-06-01",
	}
	if rich {
		l.SalaryText = "$150k - $180k"
		l.Benefits = []string{"Health insurance", "401k"}
		l.JobType = "full-time"
	}
	return l
}

func newService(adapters []source.Adapter) (*catalog.Service, *store.Memory, *cache.Memory) {
	jobs := store.NewMemory()
	pages := cache.NewMemory(5 * time.Minute)
	svc := catalog.NewService(adapters, jobs, pages, nil, zap.NewNop())
	svc.SetSearchTimeout(2 * time.Second)
	return svc, jobs, pages
}

// ── Cache behavior ─────────────────────────────────────────────────────────

func TestSearch_SecondIdenticalQueryHitsCacheWithoutAdapters(t *testing.T) {
	ctx := context.Background()
	a := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "1", true)}}
	svc, _, _ := newService([]source.Adapter{a})

	q := model.SearchQuery{Keywords: "backend"}

	first, err := svc.Search(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, a.searches)

	second, err := svc.Search(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, a.searches, "cached search must not invoke any adapter")
	require.Equal(t, first.Total, second.Total)
	require.Len(t, second.Jobs, len(first.Jobs))
	for i := range first.Jobs {
		require.Equal(t, first.Jobs[i].ID, second.Jobs[i].ID)
	}
}

func TestSearch_InvalidateQueryForcesRecompute(t *testing.T) {
	ctx := context.Background()
	a := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "1", true)}}
	svc, _, _ := newService([]source.Adapter{a})

	q := model.SearchQuery{Keywords: "backend"}
	_, err := svc.Search(ctx, q)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateQuery(ctx, q))

	_, err = svc.Search(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, a.searches)
}

// ── Dedup across sources ───────────────────────────────────────────────────

func TestSearch_ThreeSourcesSameJobReturnsRicherRecord(t *testing.T) {
	ctx := context.Background()
	rich := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "a1", true)}}
	plainB := &fakeAdapter{name: "remotive", listings: []model.RawListing{acmeListing("remotive", "b1", false)}}
	plainC := &fakeAdapter{name: "jooble", listings: []model.RawListing{acmeListing("jooble", "c1", false)}}
	svc, jobs, _ := newService([]source.Adapter{rich, plainB, plainC})

	res, err := svc.Search(ctx, model.SearchQuery{Keywords: "backend"})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total, "duplicates across sources must collapse to one job")
	require.Equal(t, "adzuna", res.Jobs[0].Source)
	require.NotNil(t, res.Jobs[0].SalaryMin)
	require.NotEmpty(t, res.Jobs[0].Benefits)

	// Non-canonical records stay individually fetchable.
	require.Equal(t, 3, jobs.Len())
	shadowed, err := svc.GetJobByExternalID(ctx, "remotive", "b1")
	require.NoError(t, err)
	require.False(t, shadowed.Canonical)
}

// ── Partial failure ────────────────────────────────────────────────────────

func TestSearch_OneAdapterFailingDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	ok1 := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "1", true)}}
	ok2 := &fakeAdapter{name: "remotive", listings: []model.RawListing{{
		ExternalID: "9", Source: "remotive", Title: "Data Engineer",
		Company: "Umbrella", Location: "Remote", PostedAt: "2026-06-02", Remote: true,
	}}}
	down := &fakeAdapter{name: "jooble", err: model.ErrSourceUnavailable}
	svc, _, _ := newService([]source.Adapter{ok1, down, ok2})

	res, err := svc.Search(ctx, model.SearchQuery{})
	require.NoError(t, err, "a failing source must not fail the search")
	require.Equal(t, 2, res.Total, "result must be the union of the healthy sources")
}

func TestSearch_AllAdaptersFailingReturnsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	down1 := &fakeAdapter{name: "adzuna", err: errors.New("boom")}
	down2 := &fakeAdapter{name: "remotive", err: model.ErrRateLimited}
	svc, _, _ := newService([]source.Adapter{down1, down2})

	res, err := svc.Search(ctx, model.SearchQuery{})
	require.NoError(t, err)
	require.Equal(t, 0, res.Total)
	require.Empty(t, res.Jobs)
}

func TestSearch_AllAdaptersFailingServesStoreAsColdFallback(t *testing.T) {
	ctx := context.Background()
	healthy := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "1", true)}}
	svc, jobs, pages := newService([]source.Adapter{healthy})

	_, err := svc.Search(ctx, model.SearchQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, jobs.Len())

	// Same service, adapter now down, cache cleared: the stored catalog serves.
	healthy.err = errors.New("boom")
	require.NoError(t, pages.Invalidate(ctx, model.SearchQuery{}.Normalized().Fingerprint()))

	res, err := svc.Search(ctx, model.SearchQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "Senior Backend Engineer", res.Jobs[0].Title)
}

// ── Validation and filters ─────────────────────────────────────────────────

func TestSearch_MalformedQueryRejectedBeforeAdapters(t *testing.T) {
	a := &fakeAdapter{name: "adzuna"}
	svc, _, _ := newService([]source.Adapter{a})

	_, err := svc.Search(context.Background(), model.SearchQuery{Page: -1})
	require.ErrorIs(t, err, model.ErrValidation)
	require.Zero(t, a.searches)
}

func TestSearch_FiltersApply(t *testing.T) {
	ctx := context.Background()
	remoteJob := model.RawListing{
		ExternalID: "r1", Source: "remotive", Title: "Go Developer",
		Company: "Umbrella", Location: "Remote", Remote: true, PostedAt: "2026-06-02",
	}
	onsiteJob := acmeListing("adzuna", "o1", true)
	a := &fakeAdapter{name: "adzuna", listings: []model.RawListing{remoteJob, onsiteJob}}
	svc, _, _ := newService([]source.Adapter{a})

	res, err := svc.Search(ctx, model.SearchQuery{
		RemoteTypes: []model.RemoteType{model.RemoteTypeRemote},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "Go Developer", res.Jobs[0].Title)
}

func TestSearch_Pagination(t *testing.T) {
	ctx := context.Background()
	var listings []model.RawListing
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		l := acmeListing("adzuna", id, false)
		l.Title = "Engineer " + id // distinct dedup keys
		listings = append(listings, l)
	}
	a := &fakeAdapter{name: "adzuna", listings: listings}
	svc, _, _ := newService([]source.Adapter{a})

	res, err := svc.Search(ctx, model.SearchQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Equal(t, 5, res.Total)
	require.Equal(t, 3, res.TotalPages)
	require.Equal(t, 2, res.Page)
	require.Len(t, res.Jobs, 2)
}

// ── Detail lookups ─────────────────────────────────────────────────────────

func TestGetJobByExternalID_LiveFallbackStoresResult(t *testing.T) {
	ctx := context.Background()
	a := &fakeAdapter{name: "adzuna", listings: []model.RawListing{acmeListing("adzuna", "77", true)}}
	svc, jobs, _ := newService([]source.Adapter{a})

	got, err := svc.GetJobByExternalID(ctx, "adzuna", "77")
	require.NoError(t, err)
	require.Equal(t, 1, a.details, "store miss must trigger a live fetch")
	require.Equal(t, "Acme Corp", got.Company)
	require.Equal(t, 1, jobs.Len(), "fetched listing must be stored")

	// Second lookup is served from the store.
	_, err = svc.GetJobByExternalID(ctx, "adzuna", "77")
	require.NoError(t, err)
	require.Equal(t, 1, a.details)
}

func TestGetJobByExternalID_UnknownEverywhere(t *testing.T) {
	a := &fakeAdapter{name: "adzuna"}
	svc, _, _ := newService([]source.Adapter{a})

	_, err := svc.GetJobByExternalID(context.Background(), "adzuna", "missing")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.GetJobByExternalID(context.Background(), "nosuchboard", "1")
	require.ErrorIs(t, err, model.ErrNotFound)
}

// ── Detached ingestion ─────────────────────────────────────────────────────

// blockingAdapter parks inside Search until released, so a test can cancel
// the caller while the fetch is in flight.
type blockingAdapter struct {
	started  chan struct{}
	release  chan struct{}
	listings []model.RawListing
	searches int
}

func (b *blockingAdapter) Name() string { return "adzuna" }

func (b *blockingAdapter) Search(ctx context.Context, _ model.SearchQuery) ([]model.RawListing, error) {
	b.searches++
	close(b.started)
	select {
	case <-b.release:
		return b.listings, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingAdapter) FetchDetail(context.Context, string) (*model.RawListing, error) {
	return nil, nil
}

func TestSearch_CallerAbortStillPersistsAndCaches(t *testing.T) {
	a := &blockingAdapter{
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		listings: []model.RawListing{acmeListing("adzuna", "1", true)},
	}
	svc, jobs, _ := newService([]source.Adapter{a})

	callerCtx, cancel := context.WithCancel(context.Background())
	type outcome struct {
		res *model.SearchResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := svc.Search(callerCtx, model.SearchQuery{Keywords: "backend"})
		done <- outcome{res, err}
	}()

	// Abort the caller while the adapter is mid-flight, then let the fetch
	// complete on the detached ingestion context.
	<-a.started
	cancel()
	close(a.release)

	got := <-done
	require.ErrorIs(t, got.err, context.Canceled)
	require.Nil(t, got.res)

	// The abandoned results still reached the store and the cache: the
	// rerun is served without another adapter call.
	require.Equal(t, 1, jobs.Len())

	res, err := svc.Search(context.Background(), model.SearchQuery{Keywords: "backend"})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 1)
	require.Equal(t, 1, a.searches)
}
