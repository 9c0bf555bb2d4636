package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery describes one catalog search. Identical queries produce
// identical fingerprints, so they hit the same cache entry within the TTL.
type SearchQuery struct {
	Keywords         string       `json:"keywords,omitempty"`
	Location         string       `json:"location,omitempty"`
	RemoteTypes      []RemoteType `json:"remoteTypes,omitempty"`
	JobTypes         []string     `json:"jobTypes,omitempty"`
	SalaryMin        *int         `json:"salaryMin,omitempty"`
	SalaryMax        *int         `json:"salaryMax,omitempty"`
	PostedWithinDays int          `json:"postedWithinDays,omitempty"`
	Page             int          `json:"page"`
	PageSize         int          `json:"pageSize"`
}

// Normalized returns a copy with defaults applied and set-valued fields
// ordered, so logically identical queries compare and hash equal.
func (q SearchQuery) Normalized() SearchQuery {
	out := q
	out.Keywords = strings.Join(strings.Fields(strings.ToLower(q.Keywords)), " ")
	out.Location = strings.TrimSpace(q.Location)
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize <= 0 {
		out.PageSize = DefaultPageSize
	}
	if len(q.RemoteTypes) > 0 {
		out.RemoteTypes = append([]RemoteType(nil), q.RemoteTypes...)
		sort.Slice(out.RemoteTypes, func(i, j int) bool { return out.RemoteTypes[i] < out.RemoteTypes[j] })
	}
	if len(q.JobTypes) > 0 {
		out.JobTypes = make([]string, 0, len(q.JobTypes))
		for _, t := range q.JobTypes {
			out.JobTypes = append(out.JobTypes, strings.ToLower(strings.TrimSpace(t)))
		}
		sort.Strings(out.JobTypes)
	}
	return out
}

// Validate rejects malformed queries before any adapter call.
func (q SearchQuery) Validate() error {
	if q.Page < 0 {
		return fmt.Errorf("%w: page must not be negative", ErrValidation)
	}
	if q.PageSize < 0 || q.PageSize > MaxPageSize {
		return fmt.Errorf("%w: pageSize must be in [0,%d]", ErrValidation, MaxPageSize)
	}
	if q.PostedWithinDays < 0 {
		return fmt.Errorf("%w: postedWithinDays must not be negative", ErrValidation)
	}
	if q.SalaryMin != nil && *q.SalaryMin < 0 {
		return fmt.Errorf("%w: salaryMin must not be negative", ErrValidation)
	}
	if q.SalaryMin != nil && q.SalaryMax != nil && *q.SalaryMax < *q.SalaryMin {
		return fmt.Errorf("%w: salaryMax below salaryMin", ErrValidation)
	}
	for _, rt := range q.RemoteTypes {
		switch rt {
		case RemoteTypeRemote, RemoteTypeHybrid, RemoteTypeOnsite, RemoteTypeUnknown:
		default:
			return fmt.Errorf("%w: unknown remote type %q", ErrValidation, rt)
		}
	}
	return nil
}

// Fingerprint hashes the normalized query parameters into the cache key.
func (q SearchQuery) Fingerprint() string {
	n := q.Normalized()

	var b strings.Builder
	b.WriteString("kw=" + n.Keywords)
	b.WriteString("|loc=" + strings.ToLower(n.Location))
	for _, rt := range n.RemoteTypes {
		b.WriteString("|rt=" + string(rt))
	}
	for _, jt := range n.JobTypes {
		b.WriteString("|jt=" + jt)
	}
	if n.SalaryMin != nil {
		fmt.Fprintf(&b, "|smin=%d", *n.SalaryMin)
	}
	if n.SalaryMax != nil {
		fmt.Fprintf(&b, "|smax=%d", *n.SalaryMax)
	}
	fmt.Fprintf(&b, "|days=%d|page=%d|size=%d", n.PostedWithinDays, n.Page, n.PageSize)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
