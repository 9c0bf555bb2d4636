package embedding

import (
	"context"

	"go.uber.org/zap"

	"joblens/catalog-service/internal/model"
	"joblens/catalog-service/internal/vector"
)

// Worker indexes job embeddings asynchronously so upserts never wait on the
// provider. JobUpserted enqueues without blocking; a full queue drops the
// job, which only delays its appearance in recommendations until the next
// observation.
type Worker struct {
	embedder Embedder
	index    vector.Index
	logger   *zap.Logger
	queue    chan model.Job
}

// NewWorker creates a worker with the given queue capacity.
func NewWorker(embedder Embedder, index vector.Index, logger *zap.Logger, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Worker{
		embedder: embedder,
		index:    index,
		logger:   logger.With(zap.String("component", "embed-worker")),
		queue:    make(chan model.Job, queueSize),
	}
}

// JobUpserted is the aggregator's upsert hook.
func (w *Worker) JobUpserted(job model.Job) {
	select {
	case w.queue <- job:
	default:
		w.logger.Warn("embed queue full, dropping job",
			zap.String("source", job.Source),
			zap.String("external_id", job.ExternalID),
		)
	}
}

// Run drains the queue until the context ends.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.queue:
			w.process(ctx, job)
		}
	}
}

func (w *Worker) process(ctx context.Context, job model.Job) {
	vec, err := w.embedder.Embed(ctx, JobText(job))
	if err != nil {
		// Provider down: skip, recommendations fall back to keywords.
		w.logger.Warn("embed failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}

	meta := vector.Metadata{
		Title:     job.Title,
		Company:   job.Company,
		SalaryMin: job.SalaryMin,
		SalaryMax: job.SalaryMax,
		Remote:    job.RemoteType == model.RemoteTypeRemote,
	}
	if err := w.index.Upsert(ctx, job.ID, vec, meta); err != nil {
		w.logger.Warn("vector upsert failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		return
	}
	w.logger.Debug("job embedded", zap.String("job_id", job.ID.String()))
}

// drainOne processes a single queued job synchronously. Test hook.
func (w *Worker) drainOne(ctx context.Context) bool {
	select {
	case job := <-w.queue:
		w.process(ctx, job)
		return true
	default:
		return false
	}
}
