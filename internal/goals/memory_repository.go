package goals

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	goals map[string]Goal
}

// NewMemoryRepository builds an in-memory goal store for tests and local development.
func NewMemoryRepository() Repository {
	return &memoryRepository{goals: make(map[string]Goal)}
}

func (r *memoryRepository) Add(_ context.Context, goals []Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range goals {
		r.goals[g.ID] = g
	}
	return nil
}

func (r *memoryRepository) ListDay(_ context.Context, userID, dayKey string) ([]Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Goal
	for _, g := range r.goals {
		if g.UserID == userID && g.DayKey == dayKey {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) MarkComplete(_ context.Context, userID, dayKey string, ids []string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate the whole batch before writing anything.
	for _, id := range ids {
		g, ok := r.goals[id]
		if !ok || g.UserID != userID || g.DayKey != dayKey {
			return ErrNotFound
		}
	}
	for _, id := range ids {
		g := r.goals[id]
		ts := at
		g.Complete = true
		g.CompletedAt = &ts
		g.UpdatedAt = &ts
		r.goals[id] = g
	}
	return nil
}
