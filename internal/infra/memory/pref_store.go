package memory

import (
	"context"
	"sync"

	"usmle-quiz-service/internal/domain"
)

// PrefStore keeps per-user preferences in memory; the Redis variant is used
// when durability across restarts is wanted.
type PrefStore struct {
	mu    sync.RWMutex
	prefs map[string]domain.Preferences
}

func NewPrefStore() *PrefStore {
	return &PrefStore{prefs: make(map[string]domain.Preferences)}
}

func (s *PrefStore) Load(_ context.Context, userID string) (domain.Preferences, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.prefs[userID]
	return prefs, ok, nil
}

func (s *PrefStore) Save(_ context.Context, userID string, prefs domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = prefs
	return nil
}
