package app

import (
	"errors"
	"testing"
	"time"

	"usmle-quiz-service/internal/domain"
)

func newTestSession(t *testing.T, n int) (*Session, *time.Time) {
	t.Helper()
	now := time.Unix(1700000000, 0)
	session, err := NewSessionWithClock(domain.QuizConfig{QuestionCount: n}, makeQuestions(n), func() time.Time { return now })
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session, &now
}

func TestSessionRequiresQuestions(t *testing.T) {
	_, err := NewSession(domain.QuizConfig{QuestionCount: 5}, nil)
	if !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no-questions error, got %v", err)
	}
}

func TestSelectOptionRecordsAnswer(t *testing.T) {
	session, now := newTestSession(t, 3)
	*now = now.Add(12 * time.Second)

	rec, ok, err := session.SelectOption("right")
	if err != nil || !ok {
		t.Fatalf("select: ok=%v err=%v", ok, err)
	}
	if !rec.Correct || rec.SelectedOptionID != "right" || rec.TimedOut {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.TimeSpentSeconds != 12 {
		t.Fatalf("expected 12s spent, got %d", rec.TimeSpentSeconds)
	}
	if got := len(session.Answers()); got != 1 {
		t.Fatalf("expected 1 answer, got %d", got)
	}
}

func TestDoubleSubmissionIgnored(t *testing.T) {
	session, _ := newTestSession(t, 3)

	if _, ok, _ := session.SelectOption("wrong"); !ok {
		t.Fatalf("first selection should record")
	}
	if _, ok, _ := session.SelectOption("right"); ok {
		t.Fatalf("second selection should be ignored")
	}
	answers := session.Answers()
	if len(answers) != 1 || answers[0].SelectedOptionID != "wrong" {
		t.Fatalf("expected the first selection to stand, got %+v", answers)
	}
}

func TestUnknownOptionRejected(t *testing.T) {
	session, _ := newTestSession(t, 1)
	if _, _, err := session.SelectOption("nope"); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option-not-found, got %v", err)
	}
	if len(session.Answers()) != 0 {
		t.Fatalf("rejected option must not record an answer")
	}
}

func TestTimeoutSuppressedAfterSelection(t *testing.T) {
	session, _ := newTestSession(t, 2)

	if _, ok, _ := session.SelectOption("right"); !ok {
		t.Fatalf("selection should record")
	}
	if _, ok := session.HandleTimeout(); ok {
		t.Fatalf("timeout after selection must be a no-op")
	}
	answers := session.Answers()
	if len(answers) != 1 || answers[0].TimedOut || answers[0].SelectedOptionID != "right" {
		t.Fatalf("expected the explicit selection to stand, got %+v", answers)
	}
}

func TestTimeoutRecordsIncorrect(t *testing.T) {
	session, _ := newTestSession(t, 2)

	rec, ok := session.HandleTimeout()
	if !ok {
		t.Fatalf("timeout should record while awaiting an answer")
	}
	if rec.Correct || !rec.TimedOut || rec.SelectedOptionID != "" {
		t.Fatalf("unexpected timeout record: %+v", rec)
	}
}

func TestAdvanceThroughCompletion(t *testing.T) {
	session, _ := newTestSession(t, 2)

	if _, ok, _ := session.SelectOption("right"); !ok {
		t.Fatalf("select q1")
	}
	completed, ok := session.Advance()
	if !ok || completed {
		t.Fatalf("expected advance to q2, got completed=%v ok=%v", completed, ok)
	}
	if _, index, ok := session.CurrentQuestion(); !ok || index != 1 {
		t.Fatalf("expected question index 1")
	}
	if session.SelectedOption() != "" {
		t.Fatalf("selection must clear on advance")
	}

	if _, ok, _ := session.SelectOption("wrong"); !ok {
		t.Fatalf("select q2")
	}
	completed, ok = session.Advance()
	if !ok || !completed {
		t.Fatalf("expected completion after last question")
	}
	if !session.Completed() {
		t.Fatalf("session should be completed")
	}
	if session.Score() != 1 {
		t.Fatalf("expected score 1, got %d", session.Score())
	}
}

func TestAdvanceIsNoOpWhenCompleted(t *testing.T) {
	session, _ := newTestSession(t, 1)

	session.SelectOption("right")
	session.Advance()
	before := session.Answers()

	completed, ok := session.Advance()
	if ok {
		t.Fatalf("advance after completion must be ignored")
	}
	if !completed {
		t.Fatalf("no-op advance should still report completed")
	}
	if len(session.Answers()) != len(before) {
		t.Fatalf("answer list changed by no-op advance")
	}
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	session, _ := newTestSession(t, 2)
	if _, ok := session.Advance(); ok {
		t.Fatalf("advance without an answer must be ignored")
	}
}

func TestForceCompleteSkipsUnanswered(t *testing.T) {
	session, _ := newTestSession(t, 10)

	for i := 0; i < 7; i++ {
		if _, ok, _ := session.SelectOption("right"); !ok {
			t.Fatalf("select question %d", i)
		}
		session.Advance()
	}

	if !session.ForceComplete() {
		t.Fatalf("expected forced completion")
	}
	if got := len(session.Answers()); got != 7 {
		t.Fatalf("unanswered questions must not be recorded, got %d answers", got)
	}
	summary := session.Summary()
	if summary.Score != 7 || summary.TotalQuestions != 10 {
		t.Fatalf("unexpected summary after forced completion: %+v", summary)
	}
}

func TestForceCompleteIdempotent(t *testing.T) {
	session, _ := newTestSession(t, 1)
	if !session.ForceComplete() {
		t.Fatalf("first force-complete should apply")
	}
	if session.ForceComplete() {
		t.Fatalf("second force-complete should be a no-op")
	}
}

func TestResetRestartsSession(t *testing.T) {
	session, _ := newTestSession(t, 3)

	session.SelectOption("right")
	session.Advance()
	session.SelectOption("wrong")

	session.Reset()
	if session.Completed() {
		t.Fatalf("reset session must not be completed")
	}
	if _, index, ok := session.CurrentQuestion(); !ok || index != 0 {
		t.Fatalf("expected reset to question 0")
	}
	if len(session.Answers()) != 0 {
		t.Fatalf("expected empty answer list after reset")
	}
	if session.Score() != 0 {
		t.Fatalf("expected zero score after reset")
	}
}

func TestAnswerCountBoundedAndMonotonic(t *testing.T) {
	const n = 5
	session, _ := newTestSession(t, n)

	// Hammer the session with an arbitrary mix of calls; the answer list
	// may only grow, and never past the question count.
	calls := []func(){
		func() { session.SelectOption("right") },
		func() { session.HandleTimeout() },
		func() { session.SelectOption("wrong") },
		func() { session.Advance() },
		func() { session.HandleTimeout() },
		func() { session.Advance() },
		func() { session.SelectOption("nope") },
	}
	prev := 0
	for round := 0; round < 4*n; round++ {
		calls[round%len(calls)]()
		got := len(session.Answers())
		if got < prev {
			t.Fatalf("answer count decreased from %d to %d at round %d", prev, got, round)
		}
		if got > n {
			t.Fatalf("answer count %d exceeds question count %d at round %d", got, n, round)
		}
		prev = got
	}
}

func TestScoreDedupesByQuestionIndex(t *testing.T) {
	answers := []domain.AnswerRecord{
		{QuestionIndex: 0, Correct: true},
		{QuestionIndex: 0, Correct: true}, // duplicate record for the same question
		{QuestionIndex: 1, Correct: false},
	}
	if got := scoreOf(answers); got != 1 {
		t.Fatalf("expected duplicate-safe score 1, got %d", got)
	}
}
