// Package ratelimit enforces per-source request budgets over fixed minute
// and day windows. Counters are ephemeral: losing them only relaxes limits.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"joblens/catalog-service/internal/model"
)

// Budget is the per-source request allowance.
type Budget struct {
	PerMinute int
	PerDay    int
}

// Limiter answers whether one more upstream call to a source fits the budget.
// Allow performs increment-and-check as one atomic operation, so concurrent
// callers cannot jointly exceed the budget.
type Limiter interface {
	Allow(ctx context.Context, source string) error
}

type window struct {
	count int
	reset time.Time
}

type sourceWindows struct {
	minute window
	day    window
}

// Memory is an in-process Limiter shared by all concurrent callers.
type Memory struct {
	mu      sync.Mutex
	budget  Budget
	windows map[string]*sourceWindows
	now     func() time.Time
}

// NewMemory creates a process-wide in-memory limiter.
func NewMemory(budget Budget) *Memory {
	return &Memory{
		budget:  budget,
		windows: make(map[string]*sourceWindows),
		now:     time.Now,
	}
}

// Allow consumes one unit of the source's minute and day budgets.
// It returns model.ErrRateLimited when either window is exhausted.
func (m *Memory) Allow(_ context.Context, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[source]
	if !ok {
		w = &sourceWindows{}
		m.windows[source] = w
	}

	if now.After(w.minute.reset) {
		w.minute = window{reset: now.Add(time.Minute)}
	}
	if now.After(w.day.reset) {
		w.day = window{reset: now.Add(24 * time.Hour)}
	}

	w.minute.count++
	w.day.count++

	if m.budget.PerMinute > 0 && w.minute.count > m.budget.PerMinute {
		return fmt.Errorf("%w: source %s minute budget", model.ErrRateLimited, source)
	}
	if m.budget.PerDay > 0 && w.day.count > m.budget.PerDay {
		return fmt.Errorf("%w: source %s day budget", model.ErrRateLimited, source)
	}
	return nil
}
