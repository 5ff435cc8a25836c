package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// QuizLoader reads quiz documents straight from Postgres over a pgx
// pool; it feeds the quiz cache on the hot read path.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, id).Scan(&raw)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.Quiz{}, domain.ErrQuizNotFound
	case err != nil:
		return domain.Quiz{}, &domain.StoreError{Op: "load quiz", Err: err}
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, &domain.StoreError{Op: "decode quiz", Err: err}
	}
	return quiz, nil
}
