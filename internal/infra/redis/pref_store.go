package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"usmle-quiz-service/internal/domain"
)

// PrefStore persists per-user quiz preferences as JSON values in Redis.
type PrefStore struct {
	client *redis.Client
}

func NewPrefStore(client *redis.Client) *PrefStore {
	return &PrefStore{client: client}
}

func (s *PrefStore) Load(ctx context.Context, userID string) (domain.Preferences, bool, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return domain.Preferences{}, false, nil
	}
	if err != nil {
		return domain.Preferences{}, false, fmt.Errorf("load preferences: %w", err)
	}
	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.Preferences{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, true, nil
}

func (s *PrefStore) Save(ctx context.Context, userID string, prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *PrefStore) key(userID string) string {
	return "quiz:prefs:" + userID
}
