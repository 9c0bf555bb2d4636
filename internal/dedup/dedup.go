// Package dedup merges near-duplicate listings observed from several sources
// into one canonical representative per real-world posting.
package dedup

import (
	"sort"

	"joblens/catalog-service/internal/model"
)

// Merge collapses same-key listings to the single most complete record.
// Ties on completeness resolve to the most recent posted date. The result
// order is deterministic: completeness desc, posted date desc, key asc.
// Merge is idempotent: merging an already-merged set changes nothing.
//
// Non-canonical entries are dropped from the returned set only; callers keep
// persisting them so they stay fetchable by external id.
func Merge(jobs []model.Job) []model.Job {
	if len(jobs) == 0 {
		return nil
	}

	best := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		key := j.DedupKey()
		cur, seen := best[key]
		if !seen || beats(j, cur) {
			best[key] = j
		}
	}

	out := make([]model.Job, 0, len(best))
	for _, j := range best {
		j.Canonical = true
		out = append(out, j)
	}

	sort.SliceStable(out, func(i, k int) bool {
		ci, ck := out[i].Completeness(), out[k].Completeness()
		if ci != ck {
			return ci > ck
		}
		if !out[i].PostedDate.Equal(out[k].PostedDate) {
			return out[i].PostedDate.After(out[k].PostedDate)
		}
		return out[i].DedupKey() < out[k].DedupKey()
	})
	return out
}

// beats reports whether a should replace b as the canonical record.
func beats(a, b model.Job) bool {
	ca, cb := a.Completeness(), b.Completeness()
	if ca != cb {
		return ca > cb
	}
	return a.PostedDate.After(b.PostedDate)
}
