package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"usmle-quiz-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
}

// QuestionRepository caches question sets per category/difficulty with TTL to
// avoid repeated store hits while many attempts start against the same filter.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	key := cacheKey(filter)
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return capCount(entry.questions, filter.Count), nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[key]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.questions, nil
		}
		r.mu.RUnlock()

		// The full filtered set is cached; the count cap is applied per call.
		questions, err := r.loader.LoadQuestions(ctx, domain.QuestionFilter{
			CategoryID: filter.CategoryID,
			Difficulty: filter.Difficulty,
		})
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = cachedSet{
			questions: questions,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return capCount(result.([]domain.Question), filter.Count), nil
}

func cacheKey(filter domain.QuestionFilter) string {
	difficulty := filter.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMixed
	}
	return filter.CategoryID + "|" + string(difficulty)
}

func capCount(questions []domain.Question, count int) []domain.Question {
	if count > 0 && len(questions) > count {
		questions = questions[:count]
	}
	out := make([]domain.Question, len(questions))
	copy(out, questions)
	return out
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves questions from an in-memory list (tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	var out []domain.Question
	for _, q := range l.questions {
		if filter.CategoryID != "" && !matchesCategory(q, filter.CategoryID) {
			continue
		}
		if !matchesDifficulty(q, filter.Difficulty) {
			continue
		}
		out = append(out, q)
		if filter.Count > 0 && len(out) == filter.Count {
			break
		}
	}
	return out, nil
}

func matchesCategory(q domain.Question, categoryID string) bool {
	if q.Topic == categoryID || q.System == categoryID || q.Subject == categoryID {
		return true
	}
	for _, tag := range q.Tags {
		if tag == categoryID {
			return true
		}
	}
	return false
}

func matchesDifficulty(q domain.Question, difficulty domain.Difficulty) bool {
	if difficulty == "" || difficulty == domain.DifficultyMixed {
		return true
	}
	return q.Difficulty == difficulty
}
