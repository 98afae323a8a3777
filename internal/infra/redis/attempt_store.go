package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"usmle-quiz-service/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Attempts themselves stay in-process (they carry live timers and callbacks);
// Redis holds a liveness marker per attempt so an operator can see active
// attempts across instances and expired ones age out.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Put(id string, attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[id] = attempt
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(id), "1", s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *AttemptStore) key(id string) string {
	return "quiz:attempt:" + id
}
