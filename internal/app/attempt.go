package app

import (
	"usmle-quiz-service/internal/domain"
)

// Attempt ties one session to its timer engine and its write-behind recorder.
// Transports drive it through these methods; persistence happens as a side
// effect and never blocks a transition.
type Attempt struct {
	id       string
	userID   string
	session  *Session
	timer    *TimerEngine
	recorder *recorder
}

// ID returns the attempt identifier handed to clients.
func (a *Attempt) ID() string { return a.id }

// UserID returns the caller identity the attempt was started with.
func (a *Attempt) UserID() string { return a.userID }

// Session exposes the underlying state machine.
func (a *Attempt) Session() *Session { return a.session }

// Timer exposes the attempt's countdown engine.
func (a *Attempt) Timer() *TimerEngine { return a.timer }

// Persisted reports whether results are being written to the backing store.
func (a *Attempt) Persisted() bool { return !a.recorder.Offline() }

// SelectOption records an explicit answer. On success the per-question clock
// pauses and the answer row is written behind the scenes.
func (a *Attempt) SelectOption(optionID string) (domain.AnswerRecord, bool, error) {
	rec, ok, err := a.session.SelectOption(optionID)
	if err != nil || !ok {
		return rec, ok, err
	}
	a.timer.PauseQuestion()
	a.recorder.recordAnswer(rec)
	return rec, true, nil
}

// HandleTimeout records a per-question expiry. Ignored when the question was
// already answered, so a selection in the same tick always wins.
func (a *Attempt) HandleTimeout() (domain.AnswerRecord, bool) {
	rec, ok := a.session.HandleTimeout()
	if !ok {
		return rec, false
	}
	a.timer.PauseQuestion()
	a.recorder.recordAnswer(rec)
	return rec, true
}

// Advance moves to the next question or completes the attempt. Completion
// stops the timers and flushes the aggregate result.
func (a *Attempt) Advance() (completed bool, ok bool) {
	completed, ok = a.session.Advance()
	if !ok {
		return completed, false
	}
	if completed {
		a.timer.Stop()
		a.recorder.complete(a.session.Summary())
		return true, true
	}
	a.timer.RearmQuestion()
	return false, true
}

// ForceComplete ends the attempt immediately (whole-session clock expiry).
// Unresolved questions are not recorded.
func (a *Attempt) ForceComplete() {
	if !a.session.ForceComplete() {
		return
	}
	a.timer.Stop()
	a.recorder.complete(a.session.Summary())
}

// Reset restarts the attempt from the first question with fresh clocks.
func (a *Attempt) Reset() {
	a.session.Reset()
	a.timer.Reset()
}

// Summary computes the result summary from the answers recorded so far.
func (a *Attempt) Summary() domain.ResultSummary {
	return a.session.Summary()
}
