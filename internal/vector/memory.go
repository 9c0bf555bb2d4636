package vector

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	vec  []float32
	meta Metadata
}

// Memory is an in-process cosine-similarity Index. It keeps the matching
// engine testable without a live vector backend.
type Memory struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
}

// NewMemory creates an empty index.
func NewMemory() *Memory {
	return &Memory{entries: make(map[uuid.UUID]memoryEntry)}
}

func (m *Memory) Upsert(_ context.Context, jobID uuid.UUID, vec []float32, meta Metadata) error {
	cp := append([]float32(nil), vec...)
	m.mu.Lock()
	m.entries[jobID] = memoryEntry{vec: cp, meta: meta}
	m.mu.Unlock()
	return nil
}

func (m *Memory) TopK(_ context.Context, vec []float32, k int, pred Predicate) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Candidate, 0, len(m.entries))
	for id, e := range m.entries {
		if pred != nil && !pred(e.meta) {
			continue
		}
		out = append(out, Candidate{JobID: id, Similarity: cosine(vec, e.vec), Meta: e.meta})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].JobID.String() < out[j].JobID.String()
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
