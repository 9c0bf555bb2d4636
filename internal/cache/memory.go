package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"joblens/catalog-service/internal/model"
)

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// Memory is an in-process Cache with the same TTL semantics as Redis.
// Pages are stored serialized so repeated hits return byte-identical results.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) GetPage(_ context.Context, fingerprint string) (*model.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	if m.now().After(e.expires) {
		delete(m.entries, fingerprint)
		return nil, nil
	}

	var page model.SearchResult
	if err := json.Unmarshal(e.payload, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (m *Memory) SetPage(_ context.Context, fingerprint string, page *model.SearchResult) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[fingerprint] = memoryEntry{payload: raw, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, fingerprint)
	return nil
}
