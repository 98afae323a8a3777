package app

import (
	"sync"
	"time"

	"usmle-quiz-service/internal/domain"
)

// TimerEventKind discriminates timer engine events.
type TimerEventKind int

const (
	// TimerQuestionTick: the per-question countdown decremented.
	TimerQuestionTick TimerEventKind = iota
	// TimerQuestionExpired: the per-question countdown reached zero.
	TimerQuestionExpired
	// TimerSessionTick: the whole-session countdown decremented.
	TimerSessionTick
	// TimerSessionExpired: the whole-session countdown reached zero.
	TimerSessionExpired
)

// TimerEvent is one discrete countdown event. Remaining is in seconds.
type TimerEvent struct {
	Kind      TimerEventKind
	Remaining int
}

// TimerEngine drives the two countdown clocks of a session: an optional
// per-question clock that only runs while a question awaits an answer, and an
// optional whole-session clock that runs until completion. The engine does
// not own time: it consumes ticks from an injected channel (a time.Ticker in
// production, a manual channel in tests) and emits discrete events for the
// session's owner to apply.
type TimerEngine struct {
	perQuestion  int
	sessionLimit int

	mu             sync.Mutex
	questionLeft   int
	sessionLeft    int
	questionPaused bool
	stopped        bool

	events chan TimerEvent
}

// NewTimerEngine builds an engine from a resolved config. Zero limits
// disable the corresponding clock.
func NewTimerEngine(cfg domain.QuizConfig) *TimerEngine {
	return &TimerEngine{
		perQuestion:  cfg.TimePerQuestion,
		sessionLimit: cfg.TotalTimeLimit,
		questionLeft: cfg.TimePerQuestion,
		sessionLeft:  cfg.TotalTimeLimit,
		events:       make(chan TimerEvent, 16),
	}
}

// Events returns the engine's event stream.
func (e *TimerEngine) Events() <-chan TimerEvent {
	return e.events
}

// Run consumes ticks until the source closes or quit closes. Ticker channels
// are never closed by time.Ticker, so callers running a real ticker must
// close quit to release the goroutine.
func (e *TimerEngine) Run(ticks <-chan time.Time, quit <-chan struct{}) {
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return
			}
			e.step()
		case <-quit:
			return
		}
	}
}

// step applies a single one-second tick to both clocks.
func (e *TimerEngine) step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}

	if e.sessionLimit > 0 && e.sessionLeft > 0 {
		e.sessionLeft--
		e.emitLocked(TimerEvent{Kind: TimerSessionTick, Remaining: e.sessionLeft})
		if e.sessionLeft == 0 {
			e.emitLocked(TimerEvent{Kind: TimerSessionExpired})
			// Session expiry ends all timing; consumers force completion.
			e.stopped = true
			return
		}
	}

	if e.perQuestion > 0 && !e.questionPaused && e.questionLeft > 0 {
		e.questionLeft--
		e.emitLocked(TimerEvent{Kind: TimerQuestionTick, Remaining: e.questionLeft})
		if e.questionLeft == 0 {
			e.emitLocked(TimerEvent{Kind: TimerQuestionExpired})
			// Hold until the consumer rearms for the next question.
			e.questionPaused = true
		}
	}
}

// emitLocked never blocks the tick loop: when the consumer lags, the oldest
// buffered event is dropped in its favor.
func (e *TimerEngine) emitLocked(ev TimerEvent) {
	select {
	case e.events <- ev:
	default:
		select {
		case <-e.events:
		default:
		}
		e.events <- ev
	}
}

// PauseQuestion suspends the per-question clock, as once an answer is
// recorded for the current question.
func (e *TimerEngine) PauseQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.questionPaused = true
}

// RearmQuestion restores the per-question clock to its configured value and
// resumes it, as when the next question is presented.
func (e *TimerEngine) RearmQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.questionLeft = e.perQuestion
	e.questionPaused = false
}

// Reset restores both clocks to their configured initial values, matching a
// session reset.
func (e *TimerEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.questionLeft = e.perQuestion
	e.sessionLeft = e.sessionLimit
	e.questionPaused = false
	e.stopped = false
}

// Stop halts both clocks; later ticks are ignored. Reset undoes it, so a
// retried attempt can reuse the same engine and tick source.
func (e *TimerEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
}

// QuestionRemaining returns the seconds left on the per-question clock.
func (e *TimerEngine) QuestionRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.questionLeft
}

// SessionRemaining returns the seconds left on the whole-session clock.
func (e *TimerEngine) SessionRemaining() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionLeft
}
