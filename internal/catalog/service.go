// Package catalog orchestrates the search pipeline: cache → adapters →
// normalize → dedup → persist → filter → paginate → cache.
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"joblens/catalog-service/internal/cache"
	"joblens/catalog-service/internal/dedup"
	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/normalize"
	"joblens/catalog-service/internal/source"
	"joblens/catalog-service/internal/store"
)

const defaultSearchTimeout = 20 * time.Second

// UpsertListener is notified after each successful store write, so embedding
// can happen off the search path.
type UpsertListener interface {
	JobUpserted(model.Job)
}

// Service is the aggregator. It is the Job Store's only writer.
type Service struct {
	adapters []source.Adapter
	store    store.JobStore
	cache    cache.Cache
	listener UpsertListener
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewService wires the aggregator. listener may be nil.
func NewService(adapters []source.Adapter, jobs store.JobStore, pages cache.Cache, listener UpsertListener, logger *zap.Logger) *Service {
	return &Service{
		adapters: adapters,
		store:    jobs,
		cache:    pages,
		listener: listener,
		logger:   logger.With(zap.String("component", "catalog")),
		timeout:  defaultSearchTimeout,
		now:      time.Now,
	}
}

// SetSearchTimeout bounds the adapter fan-out deadline.
func (s *Service) SetSearchTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Search runs the full pipeline. Identical queries within the cache TTL
// return the cached page without touching any adapter. Per-source failures
// are swallowed; only a store failure with nothing fresh to serve is fatal.
func (s *Service) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	return s.search(ctx, q, false)
}

// Refresh re-runs a query bypassing the cache read (the page is still
// written back). Used by the background saved-search scheduler.
func (s *Service) Refresh(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	return s.search(ctx, q, true)
}

func (s *Service) search(ctx context.Context, q model.SearchQuery, skipCache bool) (*model.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.Normalized()
	fp := q.Fingerprint()

	if !skipCache {
		page, err := s.cache.GetPage(ctx, fp)
		if err != nil {
			s.logger.Warn("cache read failed", zap.Error(err))
		} else if page != nil {
			s.logger.Debug("cache hit", zap.String("fingerprint", fp))
			return page, nil
		}
	}

	// Ingestion outlives an aborted caller: in-flight adapter results still
	// reach the store and cache, only the response is dropped.
	ingest, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	canonical, err := s.collect(ingest, q)
	if err != nil {
		return nil, err
	}

	filter := store.FromQuery(q, s.now())
	filtered := canonical[:0:0]
	for _, j := range canonical {
		if filter.Matches(j) {
			filtered = append(filtered, j)
		}
	}

	result := paginate(filtered, q.Page, q.PageSize)

	if err := s.cache.SetPage(ingest, fp, result); err != nil {
		s.logger.Warn("cache write failed", zap.Error(err))
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// collect fans out to every adapter concurrently, normalizes and dedups the
// union, and persists everything observed. When no adapter contributed, the
// store scan serves as the cold-cache fallback; its failure is the one fatal
// error of the read path.
func (s *Service) collect(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	var (
		mu   sync.Mutex
		raws []model.RawListing
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range s.adapters {
		g.Go(func() error {
			listings, err := a.Search(gctx, q)
			if err != nil {
				// Per-source failure: logged, swallowed, zero results.
				s.logger.Warn("source contributed no results",
					zap.String("source", a.Name()),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			raws = append(raws, listings...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if len(raws) == 0 {
		jobs, err := s.store.Scan(ctx, store.FromQuery(q, s.now()))
		if err != nil {
			return nil, err
		}
		return jobs, nil
	}

	jobs := make([]model.Job, 0, len(raws))
	for _, raw := range raws {
		jobs = append(jobs, normalize.Listing(raw))
	}

	canonical := dedup.Merge(jobs)

	winners := make(map[string]bool, len(canonical))
	for _, j := range canonical {
		winners[j.Source+"|"+j.ExternalID] = true
	}
	for i := range jobs {
		jobs[i].Canonical = winners[jobs[i].Source+"|"+jobs[i].ExternalID]
		s.persist(ctx, &jobs[i])
	}
	return canonical, nil
}

// persist upserts one job; write failures during an otherwise-successful
// read are logged, never surfaced.
func (s *Service) persist(ctx context.Context, job *model.Job) {
	if err := s.store.Upsert(ctx, job); err != nil {
		s.logger.Warn("store write failed",
			zap.String("source", job.Source),
			zap.String("external_id", job.ExternalID),
			zap.Error(err),
		)
		return
	}
	if s.listener != nil {
		s.listener.JobUpserted(*job)
	}
}

// GetJob looks a job up by its store identity.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return s.store.GetByID(ctx, id)
}

// GetJobByExternalID reads the store first and falls back to a live adapter
// fetch; a fetched listing is stored before it is returned.
func (s *Service) GetJobByExternalID(ctx context.Context, sourceName, externalID string) (*model.Job, error) {
	job, err := s.store.GetByExternalID(ctx, sourceName, externalID)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	adapter := s.adapterByName(sourceName)
	if adapter == nil {
		return nil, model.ErrNotFound
	}

	raw, err := adapter.FetchDetail(ctx, externalID)
	if err != nil {
		s.logger.Warn("live fetch failed", zap.String("source", sourceName), zap.Error(err))
		return nil, model.ErrNotFound
	}
	if raw == nil {
		return nil, model.ErrNotFound
	}

	fetched := normalize.Listing(*raw)
	fetched.Canonical = true
	s.persist(ctx, &fetched)
	return &fetched, nil
}

// InvalidateQuery drops the cached page for a query. Called by the external
// saved-jobs owner on its own mutations; new job arrival never invalidates.
func (s *Service) InvalidateQuery(ctx context.Context, q model.SearchQuery) error {
	return s.cache.Invalidate(ctx, q.Normalized().Fingerprint())
}

func (s *Service) adapterByName(name string) source.Adapter {
	for _, a := range s.adapters {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

func paginate(jobs []model.Job, page, pageSize int) *model.SearchResult {
	total := len(jobs)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &model.SearchResult{
		Jobs:       append([]model.Job(nil), jobs[start:end]...),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}
