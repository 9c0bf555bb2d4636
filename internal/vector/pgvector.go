package vector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Postgres implements Index on a pgvector-enabled pool (db.NewPostgresPool
// registers the vector types on every connection).
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Upsert(ctx context.Context, jobID uuid.UUID, vec []float32, meta Metadata) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO job_vectors (job_id, embedding, title, company, salary_min, salary_max, remote)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (job_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			salary_min = EXCLUDED.salary_min,
			salary_max = EXCLUDED.salary_max,
			remote = EXCLUDED.remote`,
		jobID, pgvector.NewVector(vec), meta.Title, meta.Company, meta.SalaryMin, meta.SalaryMax, meta.Remote)
	if err != nil {
		return fmt.Errorf("upsert vector %s: %w", jobID, err)
	}
	return nil
}

// TopK ranks by cosine distance. The Go-side predicate cannot be pushed into
// SQL, so the query over-fetches and trims after filtering.
func (p *Postgres) TopK(ctx context.Context, vec []float32, k int, pred Predicate) ([]Candidate, error) {
	if k <= 0 {
		k = 10
	}
	fetch := k
	if pred != nil {
		fetch = k * 4
	}

	rows, err := p.pool.Query(ctx,
		`SELECT job_id, 1 - (embedding <=> $1) AS similarity,
		        title, company, salary_min, salary_max, remote
		 FROM job_vectors
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vec), fetch)
	if err != nil {
		return nil, fmt.Errorf("topk query: %w", err)
	}
	defer rows.Close()

	out := make([]Candidate, 0, k)
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.JobID, &c.Similarity,
			&c.Meta.Title, &c.Meta.Company, &c.Meta.SalaryMin, &c.Meta.SalaryMax, &c.Meta.Remote); err != nil {
			return nil, fmt.Errorf("topk scan: %w", err)
		}
		if pred != nil && !pred(c.Meta) {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("topk rows: %w", err)
	}
	return out, nil
}
