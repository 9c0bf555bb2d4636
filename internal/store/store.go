// Package store owns the durable canonical job catalog.
// The aggregator is its only writer; matching only reads.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"joblens/catalog-service/internal/model"
)

// JobStore is the durable catalog keyed by (source, externalID).
// Upsert inserts unseen jobs and updates mutable fields on re-observation;
// jobs are never deleted. Implementations must be safe for concurrent
// writers on the same key (last write wins on mutable fields).
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	GetByExternalID(ctx context.Context, source, externalID string) (*model.Job, error)
	Upsert(ctx context.Context, job *model.Job) error
	Scan(ctx context.Context, f Filter) ([]model.Job, error)
}

// Filter narrows a catalog scan. The same predicate is applied in memory to
// fresh adapter results and by Scan for the cold-cache fallback.
type Filter struct {
	Keywords    string
	Location    string
	RemoteTypes []model.RemoteType
	JobTypes    []string
	SalaryMin   *int
	SalaryMax   *int
	PostedAfter time.Time
}

// FromQuery builds the scan filter for a search query; the postedWithin
// cutoff is anchored at now.
func FromQuery(q model.SearchQuery, now time.Time) Filter {
	f := Filter{
		Keywords:    q.Keywords,
		Location:    q.Location,
		RemoteTypes: q.RemoteTypes,
		JobTypes:    q.JobTypes,
		SalaryMin:   q.SalaryMin,
		SalaryMax:   q.SalaryMax,
	}
	if q.PostedWithinDays > 0 {
		f.PostedAfter = now.AddDate(0, 0, -q.PostedWithinDays)
	}
	return f
}

// Matches reports whether the job satisfies every set criterion.
func (f Filter) Matches(j model.Job) bool {
	if f.Location != "" &&
		!strings.Contains(strings.ToLower(j.Location), strings.ToLower(f.Location)) {
		return false
	}

	if len(f.RemoteTypes) > 0 && !containsRemote(f.RemoteTypes, j.RemoteType) {
		return false
	}

	if len(f.JobTypes) > 0 && !containsFold(f.JobTypes, j.JobType) {
		return false
	}

	if f.SalaryMin != nil || f.SalaryMax != nil {
		// Range overlap; jobs without a disclosed salary never satisfy a
		// salary filter.
		if j.SalaryMin == nil || j.SalaryMax == nil {
			return false
		}
		if f.SalaryMax != nil && *j.SalaryMin > *f.SalaryMax {
			return false
		}
		if f.SalaryMin != nil && *j.SalaryMax < *f.SalaryMin {
			return false
		}
	}

	if !f.PostedAfter.IsZero() && !j.PostedDate.After(f.PostedAfter) {
		return false
	}

	if f.Keywords != "" {
		haystack := strings.ToLower(j.Title + " " + j.Company + " " + j.Description)
		for _, kw := range strings.Fields(strings.ToLower(f.Keywords)) {
			if !strings.Contains(haystack, kw) {
				return false
			}
		}
	}
	return true
}

func containsRemote(set []model.RemoteType, v model.RemoteType) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
