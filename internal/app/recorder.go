package app

import (
	"context"
	"errors"
	"log"
	"time"

	"usmle-quiz-service/internal/domain"
)

// SessionSink is the write side of the external store: one row per session,
// one per recorded answer, plus a final completion update.
type SessionSink interface {
	CreateSession(ctx context.Context, userID string, cfg domain.QuizConfig) (string, error)
	RecordAnswer(ctx context.Context, sessionID string, rec domain.AnswerRecord) error
	CompleteSession(ctx context.Context, sessionID string, summary domain.ResultSummary) error
}

const persistTimeout = 3 * time.Second

// recorder wraps a SessionSink with the offline-tolerant write policy: if the
// initial create fails (network, or the store refuses an anonymous caller)
// the whole attempt runs locally and every later write is skipped; individual
// answer writes that fail are logged and dropped. Persistence never gates
// quiz progress.
type recorder struct {
	sink     SessionSink
	remoteID string
	offline  bool
}

func newRecorder(ctx context.Context, sink SessionSink, userID string, cfg domain.QuizConfig) *recorder {
	r := &recorder{sink: sink}
	if sink == nil {
		r.offline = true
		return r
	}

	createCtx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	id, err := sink.CreateSession(createCtx, userID, cfg)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			log.Printf("session not persisted for unauthenticated caller, continuing offline")
		} else {
			log.Printf("create session failed, continuing offline: %v", err)
		}
		r.offline = true
		return r
	}
	r.remoteID = id
	return r
}

// recordAnswer writes one answer row asynchronously; quiz progression never
// waits on it.
func (r *recorder) recordAnswer(rec domain.AnswerRecord) {
	if r.offline {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := r.sink.RecordAnswer(ctx, r.remoteID, rec); err != nil {
			log.Printf("record answer for session %s failed: %v", r.remoteID, err)
		}
	}()
}

// complete marks the remote session finished with its aggregate results.
func (r *recorder) complete(summary domain.ResultSummary) {
	if r.offline {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := r.sink.CompleteSession(ctx, r.remoteID, summary); err != nil {
			log.Printf("complete session %s failed: %v", r.remoteID, err)
		}
	}()
}

// Offline reports whether results are being persisted for this attempt.
func (r *recorder) Offline() bool {
	return r.offline
}
