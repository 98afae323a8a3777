package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"usmle-quiz-service/internal/domain"
)

// QuestionLoader loads question JSONB from Postgres, filtered by the indexed
// category/difficulty columns.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	query := `SELECT data FROM questions WHERE ($1 = '' OR category = $1) AND ($2 = '' OR difficulty = $2) ORDER BY id`
	difficulty := string(filter.Difficulty)
	if difficulty == string(domain.DifficultyMixed) {
		difficulty = ""
	}

	rows, err := l.pool.Query(ctx, query, filter.CategoryID, difficulty)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
		if filter.Count > 0 && len(questions) == filter.Count {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
