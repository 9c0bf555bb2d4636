// Package vector stores one embedding per job and answers nearest-neighbor
// queries for the recommendation path.
package vector

import (
	"context"

	"github.com/google/uuid"
)

// Metadata travels with each stored vector so candidates can be pre-filtered
// without loading the full job.
type Metadata struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	SalaryMin *int   `json:"salaryMin,omitempty"`
	SalaryMax *int   `json:"salaryMax,omitempty"`
	Remote    bool   `json:"remote"`
}

// Predicate filters candidates by metadata before ranking. A nil predicate
// accepts everything.
type Predicate func(Metadata) bool

// Candidate is one nearest-neighbor hit, most similar first.
type Candidate struct {
	JobID      uuid.UUID
	Similarity float64
	Meta       Metadata
}

// Index is the nearest-neighbor store. Implementations return their errors
// as-is; the matching engine treats any failure as a degrade signal, never
// as fatal.
type Index interface {
	Upsert(ctx context.Context, jobID uuid.UUID, vec []float32, meta Metadata) error
	TopK(ctx context.Context, vec []float32, k int, pred Predicate) ([]Candidate, error)
}
