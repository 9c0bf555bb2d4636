package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"joblens/catalog-service/internal/model"
)

const jobColumns = `id, external_id, source, title, company, location, remote_type,
	job_type, salary_min, salary_max, description, requirements, responsibilities,
	benefits, posted_date, apply_url, industry, experience_level, canonical,
	created_at, updated_at`

// Postgres implements JobStore on a pgx connection pool. Uniqueness of
// (source, external_id) is enforced by the table itself, so concurrent
// upserts for the same key cannot produce duplicates.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (p *Postgres) GetByExternalID(ctx context.Context, source, externalID string) (*model.Job, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE source = $1 AND external_id = $2`,
		source, externalID)
	return scanJob(row)
}

// Upsert inserts an unseen (source, external_id) or updates its mutable
// fields. Last write wins; created_at survives updates. The job's store
// identity and timestamps are written back into the argument.
func (p *Postgres) Upsert(ctx context.Context, job *model.Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := time.Now().UTC()

	row := p.pool.QueryRow(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)
		 ON CONFLICT (source, external_id) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			remote_type = EXCLUDED.remote_type,
			job_type = EXCLUDED.job_type,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			description = EXCLUDED.description,
			requirements = EXCLUDED.requirements,
			responsibilities = EXCLUDED.responsibilities,
			benefits = EXCLUDED.benefits,
			posted_date = EXCLUDED.posted_date,
			apply_url = EXCLUDED.apply_url,
			industry = EXCLUDED.industry,
			experience_level = EXCLUDED.experience_level,
			canonical = EXCLUDED.canonical,
			updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at, updated_at`,
		job.ID, job.ExternalID, job.Source, job.Title, job.Company, job.Location,
		job.RemoteType, job.JobType, job.SalaryMin, job.SalaryMax, job.Description,
		job.Requirements, job.Responsibilities, job.Benefits, job.PostedDate,
		job.ApplyURL, job.Industry, job.ExperienceLevel, job.Canonical, now)

	if err := row.Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("%w: upsert job %s/%s: %v", model.ErrStoreFailure, job.Source, job.ExternalID, err)
	}
	return nil
}

// Scan returns canonical jobs matching the filter, newest first. Broad
// criteria go into SQL; the full Filter predicate refines in memory so the
// semantics stay identical to the fresh-results path.
func (p *Postgres) Scan(ctx context.Context, f Filter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE canonical ORDER BY posted_date DESC LIMIT 1000`
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: scan: %v", model.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan row: %v", model.ErrStoreFailure, err)
		}
		if f.Matches(*job) {
			out = append(out, *job)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan rows: %v", model.ErrStoreFailure, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row pgx.Row) (*model.Job, error) {
	job, err := scanJobRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStoreFailure, err)
	}
	return job, nil
}

func scanJobRow(row rowScanner) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID, &j.ExternalID, &j.Source, &j.Title, &j.Company, &j.Location,
		&j.RemoteType, &j.JobType, &j.SalaryMin, &j.SalaryMax, &j.Description,
		&j.Requirements, &j.Responsibilities, &j.Benefits, &j.PostedDate,
		&j.ApplyURL, &j.Industry, &j.ExperienceLevel, &j.Canonical,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
