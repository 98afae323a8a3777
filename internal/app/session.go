package app

import (
	"sync"
	"time"

	"usmle-quiz-service/internal/domain"
)

// sessionPhase tracks where a session is in its answer/advance cycle.
type sessionPhase int

const (
	// phaseAwaitingAnswer: current question shown, nothing recorded yet.
	phaseAwaitingAnswer sessionPhase = iota
	// phaseAnswered: an answer (or timeout) is recorded for the current question.
	phaseAnswered
	// phaseAdvancing: moving to the next question; input is ignored.
	phaseAdvancing
	// phaseCompleted: terminal.
	phaseCompleted
)

// Session is the state machine for one quiz attempt. All transitions are
// serialized by the mutex; calls that are not valid for the current phase are
// ignored rather than treated as errors, which guards against double
// submissions and a timeout firing in the same tick as an explicit selection
// (the selection always wins because it flips the phase first).
type Session struct {
	cfg       domain.QuizConfig
	questions []domain.Question
	now       func() time.Time

	mu              sync.Mutex
	phase           sessionPhase
	current         int
	selected        string
	answers         []domain.AnswerRecord
	startedAt       time.Time
	questionShownAt time.Time
	completedAt     time.Time
}

// NewSession starts a session over a non-empty question list.
func NewSession(cfg domain.QuizConfig, questions []domain.Question) (*Session, error) {
	return NewSessionWithClock(cfg, questions, time.Now)
}

// NewSessionWithClock is exported for deterministic timestamps in tests.
func NewSessionWithClock(cfg domain.QuizConfig, questions []domain.Question, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	start := now()
	return &Session{
		cfg:             cfg,
		questions:       questions,
		now:             now,
		phase:           phaseAwaitingAnswer,
		startedAt:       start,
		questionShownAt: start,
	}, nil
}

// SelectOption records the user's pick for the current question. It returns
// ok=false without recording anything when the session is not awaiting an
// answer. An option ID that is not on the current question is an error.
func (s *Session) SelectOption(optionID string) (domain.AnswerRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseAwaitingAnswer {
		return domain.AnswerRecord{}, false, nil
	}
	question := s.questions[s.current]
	if !hasOption(question, optionID) {
		return domain.AnswerRecord{}, false, domain.ErrOptionNotFound
	}

	s.selected = optionID
	rec := s.recordLocked(optionID, optionID == question.CorrectOptionID, false)
	return rec, true, nil
}

// HandleTimeout records an expired per-question clock as an incorrect,
// timed-out answer. It is a no-op unless the session is awaiting an answer,
// so a selection that landed in the same tick is never overwritten.
func (s *Session) HandleTimeout() (domain.AnswerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseAwaitingAnswer {
		return domain.AnswerRecord{}, false
	}
	rec := s.recordLocked("", false, true)
	return rec, true
}

// recordLocked appends exactly one AnswerRecord for the current question and
// moves the session to phaseAnswered. Callers hold the mutex.
func (s *Session) recordLocked(optionID string, correct, timedOut bool) domain.AnswerRecord {
	now := s.now()
	spent := int(now.Sub(s.questionShownAt).Seconds())
	if spent < 0 {
		spent = 0
	}
	rec := domain.AnswerRecord{
		QuestionIndex:    s.current,
		QuestionID:       s.questions[s.current].ID,
		SelectedOptionID: optionID,
		Correct:          correct,
		TimeSpentSeconds: spent,
		TimedOut:         timedOut,
		Timestamp:        now,
	}
	s.answers = append(s.answers, rec)
	s.phase = phaseAnswered
	return rec
}

// Advance moves to the next question or, after the last one, completes the
// session. It reports (completed, ok); ok=false means the call was ignored
// because no answer is recorded yet or the session already ended.
func (s *Session) Advance() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != phaseAnswered {
		return s.phase == phaseCompleted, false
	}
	s.phase = phaseAdvancing

	if s.current+1 >= len(s.questions) {
		s.completeLocked()
		return true, true
	}
	s.current++
	s.selected = ""
	s.questionShownAt = s.now()
	s.phase = phaseAwaitingAnswer
	return false, true
}

// ForceComplete ends the session immediately, as when the whole-session clock
// reaches zero. Questions not yet resolved are not recorded as answers.
func (s *Session) ForceComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == phaseCompleted {
		return false
	}
	s.completeLocked()
	return true
}

func (s *Session) completeLocked() {
	s.phase = phaseCompleted
	s.completedAt = s.now()
}

// Reset reinitializes the session to the first question with an empty answer
// list. Valid from any phase.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = phaseAwaitingAnswer
	s.current = 0
	s.selected = ""
	s.answers = nil
	s.startedAt = s.now()
	s.questionShownAt = s.startedAt
	s.completedAt = time.Time{}
}

// Score recomputes the count of correct answers from the answer list. Only
// the first record per question index counts, so a duplicate record can never
// inflate the score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scoreOf(s.answers)
}

func scoreOf(answers []domain.AnswerRecord) int {
	seen := make(map[int]bool, len(answers))
	score := 0
	for _, rec := range answers {
		if seen[rec.QuestionIndex] {
			continue
		}
		seen[rec.QuestionIndex] = true
		if rec.Correct {
			score++
		}
	}
	return score
}

// answeredOf counts distinct answered question indexes. Accuracy pairs it
// with scoreOf so a duplicate record cannot skew either side of the ratio.
func answeredOf(answers []domain.AnswerRecord) int {
	seen := make(map[int]bool, len(answers))
	for _, rec := range answers {
		seen[rec.QuestionIndex] = true
	}
	return len(seen)
}

// CurrentQuestion returns the question currently presented. ok=false once the
// session has completed.
func (s *Session) CurrentQuestion() (domain.Question, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == phaseCompleted {
		return domain.Question{}, 0, false
	}
	return s.questions[s.current], s.current, true
}

// SelectedOption returns the transient selection for the current question.
func (s *Session) SelectedOption() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Answers returns a copy of the recorded answers in question order.
func (s *Session) Answers() []domain.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AnswerRecord, len(s.answers))
	copy(out, s.answers)
	return out
}

// Completed reports whether the session reached its terminal phase.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseCompleted
}

// Awaiting reports whether the current question is still unanswered.
func (s *Session) Awaiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseAwaitingAnswer
}

// Config returns the resolved configuration the session runs with.
func (s *Session) Config() domain.QuizConfig {
	return s.cfg
}

// Questions exposes the session's (read-only) question list.
func (s *Session) Questions() []domain.Question {
	return s.questions
}

// Summary builds the result summary from the recorded answers.
func (s *Session) Summary() domain.ResultSummary {
	s.mu.Lock()
	answers := make([]domain.AnswerRecord, len(s.answers))
	copy(answers, s.answers)
	s.mu.Unlock()
	return Summarize(answers, s.questions)
}

func hasOption(q domain.Question, optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
