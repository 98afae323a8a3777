package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"usmle-quiz-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
}

// QuestionRepository caches the full question set per category/difficulty as
// JSON in Redis and falls back to the loader on a miss:
//
//	SET questions:{category}:{difficulty} <json> EX <ttl>
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	key := r.key(filter)

	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(cached, &questions); err == nil {
			return capCount(questions, filter.Count), nil
		}
		// Unparseable cache entries are treated as misses and overwritten.
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(cached, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := r.loader.LoadQuestions(ctx, domain.QuestionFilter{
			CategoryID: filter.CategoryID,
			Difficulty: filter.Difficulty,
		})
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(questions); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return capCount(result.([]domain.Question), filter.Count), nil
}

func (r *QuestionRepository) key(filter domain.QuestionFilter) string {
	difficulty := filter.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMixed
	}
	category := filter.CategoryID
	if category == "" {
		category = "all"
	}
	return "questions:" + category + ":" + string(difficulty)
}

func capCount(questions []domain.Question, count int) []domain.Question {
	if count > 0 && len(questions) > count {
		return questions[:count]
	}
	return questions
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
