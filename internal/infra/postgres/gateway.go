package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"usmle-quiz-service/internal/domain"
)

// Gateway implements app.SessionSink against the sessions and responses
// tables. The store ties every row to a caller identity; anonymous callers
// are refused up front so the application layer can fall back to a local-only
// attempt instead of hitting row-level authorization errors mid-quiz.
type Gateway struct {
	pool *pgxpool.Pool
}

func NewGateway(pool *pgxpool.Pool) *Gateway {
	return &Gateway{pool: pool}
}

func (g *Gateway) CreateSession(ctx context.Context, userID string, cfg domain.QuizConfig) (string, error) {
	if userID == "" || userID == "anonymous" {
		return "", domain.ErrUnauthenticated
	}

	id := uuid.NewString()
	_, err := g.pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, mode, category, question_count, time_per_question, total_time_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, string(cfg.Mode), cfg.CategoryID, cfg.QuestionCount, cfg.TimePerQuestion, cfg.TotalTimeLimit,
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (g *Gateway) RecordAnswer(ctx context.Context, sessionID string, rec domain.AnswerRecord) error {
	_, err := g.pool.Exec(ctx, `
		INSERT INTO responses (session_id, question_id, question_index, selected_option, is_correct, timed_out, time_spent_seconds, answered_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`,
		sessionID, rec.QuestionID, rec.QuestionIndex, rec.SelectedOptionID, rec.Correct, rec.TimedOut, rec.TimeSpentSeconds, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("record answer: %w", err)
	}
	return nil
}

func (g *Gateway) CompleteSession(ctx context.Context, sessionID string, summary domain.ResultSummary) error {
	_, err := g.pool.Exec(ctx, `
		UPDATE sessions
		SET completed = TRUE, score = $2, accuracy = $3, duration_seconds = $4, completed_at = now()
		WHERE id = $1`,
		sessionID, summary.Score, summary.AccuracyPercent, summary.TimeTakenSeconds,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}
