package progress

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]*UserProgress // userID -> progress document
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
// It honors the same read-modify-write isolation the Firestore repository provides.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		store: make(map[string]*UserProgress),
	}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (*UserProgress, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[userID]
	if !ok {
		return NewUserProgress(userID, time.Now().UTC()), nil
	}
	return p.clone(), nil
}

func (r *memoryRepository) Update(_ context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var p *UserProgress
	if stored, ok := r.store[userID]; ok {
		p = stored.clone()
	} else {
		p = NewUserProgress(userID, time.Now().UTC())
	}

	if err := mutate(p); err != nil {
		return nil, err
	}

	r.store[userID] = p
	return p.clone(), nil
}

func (r *memoryRepository) TopByXP(_ context.Context, limit int) ([]LeaderboardEntry, error) {
	r.mu.RLock()
	entries := make([]LeaderboardEntry, 0, len(r.store))
	for userID, p := range r.store {
		entries = append(entries, LeaderboardEntry{
			UserID: userID,
			XP:     p.Stats.XP,
			Level:  p.Stats.Level,
		})
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
