package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"joblens/catalog-service/internal/model"
)

// Memory is an in-process JobStore with the same semantics as Postgres.
// Used by tests and as a standalone mode without a database.
type Memory struct {
	mu     sync.RWMutex
	byKey  map[string]*model.Job // source|externalID
	byID   map[uuid.UUID]*model.Job
	now    func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		byKey: make(map[string]*model.Job),
		byID:  make(map[uuid.UUID]*model.Job),
		now:   time.Now,
	}
}

func key(source, externalID string) string { return source + "|" + externalID }

func (m *Memory) GetByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.byID[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (m *Memory) GetByExternalID(_ context.Context, source, externalID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if j, ok := m.byKey[key(source, externalID)]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (m *Memory) Upsert(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	k := key(job.Source, job.ExternalID)

	if existing, ok := m.byKey[k]; ok {
		// Re-observation: keep identity and created_at, last write wins on
		// everything mutable.
		job.ID = existing.ID
		job.CreatedAt = existing.CreatedAt
	} else {
		if job.ID == uuid.Nil {
			job.ID = uuid.New()
		}
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	cp := *job
	m.byKey[k] = &cp
	m.byID[cp.ID] = &cp
	return nil
}

func (m *Memory) Scan(_ context.Context, f Filter) ([]model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Job
	for _, j := range m.byKey {
		if j.Canonical && f.Matches(*j) {
			out = append(out, *j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		if !out[i].PostedDate.Equal(out[k].PostedDate) {
			return out[i].PostedDate.After(out[k].PostedDate)
		}
		return out[i].ID.String() < out[k].ID.String()
	})
	return out, nil
}

// Len reports the number of stored jobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey)
}
