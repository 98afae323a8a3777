package memory

import (
	"sync"

	"usmle-quiz-service/internal/app"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Put(id string, attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[id] = attempt
}

func (s *AttemptStore) Get(id string) (*app.Attempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	return attempt, ok
}

func (s *AttemptStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, id)
}
