package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"usmle-quiz-service/internal/domain"
)

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error)
}

// AttemptRepository abstracts how active attempts are tracked (in-memory, Redis-backed).
type AttemptRepository interface {
	Put(id string, attempt *Attempt)
	Get(id string) (*Attempt, bool)
	Delete(id string)
}

// PreferenceStore persists per-user quiz preferences with an explicit
// load/save lifecycle.
type PreferenceStore interface {
	Load(ctx context.Context, userID string) (domain.Preferences, bool, error)
	Save(ctx context.Context, userID string, prefs domain.Preferences) error
}

// QuizService contains the quiz use cases: starting attempts, looking them up
// for transports, and managing stored preferences.
type QuizService struct {
	questions QuestionRepository
	attempts  AttemptRepository
	sink      SessionSink
	prefs     PreferenceStore
}

func NewQuizService(questions QuestionRepository, attempts AttemptRepository, sink SessionSink, prefs PreferenceStore) *QuizService {
	return &QuizService{questions: questions, attempts: attempts, sink: sink, prefs: prefs}
}

// Start resolves the configuration for the requested mode, fetches and
// arranges questions, and opens a new attempt. The persistence side is
// best-effort: a failed session create leaves the attempt fully playable.
func (s *QuizService) Start(ctx context.Context, userID string, mode domain.QuizMode, overrides *domain.ConfigOverrides) (*Attempt, error) {
	prefs := s.loadPreferences(ctx, userID)

	cfg, err := ResolveConfig(mode, prefs, overrides)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.GetQuestions(ctx, domain.QuestionFilter{
		CategoryID: cfg.CategoryID,
		Difficulty: cfg.Difficulty,
		Count:      cfg.QuestionCount,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	questions = arrangeQuestions(questions, cfg)

	session, err := NewSession(cfg, questions)
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		id:       uuid.NewString(),
		userID:   userID,
		session:  session,
		timer:    NewTimerEngine(cfg),
		recorder: newRecorder(ctx, s.sink, userID, cfg),
	}
	s.attempts.Put(attempt.id, attempt)
	return attempt, nil
}

// Get finds an active attempt by id.
func (s *QuizService) Get(attemptID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// Release drops an attempt from the active set. In-flight persistence calls
// are left to finish or fail on their own.
func (s *QuizService) Release(attemptID string) {
	if attempt, ok := s.attempts.Get(attemptID); ok {
		attempt.timer.Stop()
	}
	s.attempts.Delete(attemptID)
}

// SavePreferences stores the user's quiz preferences.
func (s *QuizService) SavePreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	if s.prefs == nil {
		return nil
	}
	return s.prefs.Save(ctx, userID, prefs)
}

// loadPreferences is best-effort: a missing or failing store means defaults.
func (s *QuizService) loadPreferences(ctx context.Context, userID string) domain.Preferences {
	if s.prefs == nil || userID == "" {
		return domain.Preferences{}
	}
	prefs, ok, err := s.prefs.Load(ctx, userID)
	if err != nil {
		log.Printf("load preferences for %s failed, using defaults: %v", userID, err)
		return domain.Preferences{}
	}
	if !ok {
		return domain.Preferences{}
	}
	return prefs
}

// arrangeQuestions applies the configured shuffling and count cap. Incoming
// questions are shared read-only, so option shuffling copies each question's
// option slice instead of reordering in place.
func arrangeQuestions(questions []domain.Question, cfg domain.QuizConfig) []domain.Question {
	arranged := make([]domain.Question, len(questions))
	copy(arranged, questions)

	if cfg.ShuffleQuestions {
		rand.Shuffle(len(arranged), func(i, j int) {
			arranged[i], arranged[j] = arranged[j], arranged[i]
		})
	}
	if cfg.QuestionCount > 0 && len(arranged) > cfg.QuestionCount {
		arranged = arranged[:cfg.QuestionCount]
	}
	if cfg.ShuffleOptions {
		for i := range arranged {
			options := make([]domain.Option, len(arranged[i].Options))
			copy(options, arranged[i].Options)
			rand.Shuffle(len(options), func(a, b int) {
				options[a], options[b] = options[b], options[a]
			})
			arranged[i].Options = options
		}
	}
	return arranged
}
