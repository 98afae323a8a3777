package app

import (
	"testing"
	"time"

	"usmle-quiz-service/internal/domain"
)

// tick drives one manual tick through a running engine.
func tick(ticks chan time.Time) {
	ticks <- time.Time{}
}

func startEngine(t *testing.T, cfg domain.QuizConfig) (*TimerEngine, chan time.Time, func()) {
	t.Helper()
	engine := NewTimerEngine(cfg)
	ticks := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		engine.Run(ticks, nil)
		close(done)
	}()
	return engine, ticks, func() {
		close(ticks)
		<-done
	}
}

func expectEvent(t *testing.T, engine *TimerEngine, kind TimerEventKind, remaining int) {
	t.Helper()
	select {
	case ev := <-engine.Events():
		if ev.Kind != kind || ev.Remaining != remaining {
			t.Fatalf("expected event {%v %d}, got {%v %d}", kind, remaining, ev.Kind, ev.Remaining)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event {%v %d}", kind, remaining)
	}
}

func TestQuestionCountdownAndExpiry(t *testing.T) {
	engine, ticks, stop := startEngine(t, domain.QuizConfig{TimePerQuestion: 2})
	defer stop()

	tick(ticks)
	expectEvent(t, engine, TimerQuestionTick, 1)
	tick(ticks)
	expectEvent(t, engine, TimerQuestionTick, 0)
	expectEvent(t, engine, TimerQuestionExpired, 0)

	// Expired clock holds until rearmed.
	tick(ticks)
	tick(ticks)
	if got := engine.QuestionRemaining(); got != 0 {
		t.Fatalf("expected clock held at 0, got %d", got)
	}

	engine.RearmQuestion()
	tick(ticks)
	expectEvent(t, engine, TimerQuestionTick, 1)
}

func TestPausedQuestionClockDoesNotDecrement(t *testing.T) {
	engine, ticks, stop := startEngine(t, domain.QuizConfig{TimePerQuestion: 10})
	defer stop()

	tick(ticks)
	expectEvent(t, engine, TimerQuestionTick, 9)

	engine.PauseQuestion()
	tick(ticks)
	tick(ticks)
	if got := engine.QuestionRemaining(); got != 9 {
		t.Fatalf("paused clock moved to %d", got)
	}

	engine.RearmQuestion()
	tick(ticks)
	expectEvent(t, engine, TimerQuestionTick, 9)
}

func TestSessionCountdownForcesExpiry(t *testing.T) {
	engine, ticks, stop := startEngine(t, domain.QuizConfig{TimePerQuestion: 30, TotalTimeLimit: 2})
	defer stop()

	tick(ticks)
	expectEvent(t, engine, TimerSessionTick, 1)
	expectEvent(t, engine, TimerQuestionTick, 29)
	tick(ticks)
	expectEvent(t, engine, TimerSessionTick, 0)
	expectEvent(t, engine, TimerSessionExpired, 0)

	// Session expiry stops everything, including the question clock.
	tick(ticks)
	if got := engine.QuestionRemaining(); got != 29 {
		t.Fatalf("question clock ran after session expiry: %d", got)
	}
}

func TestStopAndResetRestoreClocks(t *testing.T) {
	engine, ticks, stop := startEngine(t, domain.QuizConfig{TimePerQuestion: 5, TotalTimeLimit: 100})
	defer stop()

	tick(ticks)
	expectEvent(t, engine, TimerSessionTick, 99)
	expectEvent(t, engine, TimerQuestionTick, 4)

	engine.Stop()
	tick(ticks)
	if engine.QuestionRemaining() != 4 || engine.SessionRemaining() != 99 {
		t.Fatalf("stopped clocks moved: q=%d s=%d", engine.QuestionRemaining(), engine.SessionRemaining())
	}

	engine.Reset()
	if engine.QuestionRemaining() != 5 || engine.SessionRemaining() != 100 {
		t.Fatalf("reset did not restore clocks: q=%d s=%d", engine.QuestionRemaining(), engine.SessionRemaining())
	}
	tick(ticks)
	expectEvent(t, engine, TimerSessionTick, 99)
	expectEvent(t, engine, TimerQuestionTick, 4)
}

func TestRunReturnsWhenQuitCloses(t *testing.T) {
	engine := NewTimerEngine(domain.QuizConfig{TimePerQuestion: 5})

	// Ticker channels stay open forever, so quit is the only way out.
	ticks := make(chan time.Time)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		engine.Run(ticks, quit)
		close(done)
	}()

	close(quit)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept consuming after quit closed")
	}
}

func TestUntimedConfigEmitsNothing(t *testing.T) {
	engine, ticks, stop := startEngine(t, domain.QuizConfig{})
	defer stop()

	tick(ticks)
	tick(ticks)
	select {
	case ev := <-engine.Events():
		t.Fatalf("unexpected event %+v from untimed engine", ev)
	default:
	}
}
