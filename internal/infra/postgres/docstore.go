package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// DocStore implements the app.Store gateway on Postgres, persisting
// each quiz and attempt as a JSONB document row. Identifiers are
// store-generated 24-hex strings.
type DocStore struct {
	db *bun.DB
}

func NewDocStore(db *bun.DB) *DocStore {
	return &DocStore{db: db}
}

func (s *DocStore) InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	// post_id must be unique among quizzes; checked before insert and
	// backed by a unique index for the concurrent case.
	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM quizzes WHERE post_id = ?`, quiz.PostID).Scan(&existing)
	switch {
	case err == nil:
		return domain.Quiz{}, &domain.DuplicatePostIDError{PostID: quiz.PostID}
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Quiz{}, storeErr("find quiz by post id", err)
	}

	quiz.ID = domain.NewDocumentID()
	data, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, post_id, data) VALUES (?, ?, ?::jsonb)`,
		quiz.ID, quiz.PostID, string(data),
	); err != nil {
		if isUniqueViolation(err) {
			return domain.Quiz{}, &domain.DuplicatePostIDError{PostID: quiz.PostID}
		}
		return domain.Quiz{}, storeErr("insert quiz", err)
	}
	return quiz, nil
}

func (s *DocStore) FindQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return s.scanQuiz(ctx, `SELECT data FROM quizzes WHERE id = ?`, id)
}

func (s *DocStore) FindQuizByPostID(ctx context.Context, postID int) (domain.Quiz, error) {
	return s.scanQuiz(ctx, `SELECT data FROM quizzes WHERE post_id = ?`, postID)
}

func (s *DocStore) scanQuiz(ctx context.Context, query string, arg any) (domain.Quiz, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Quiz{}, domain.ErrQuizNotFound
	case err != nil:
		return domain.Quiz{}, storeErr("find quiz", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, storeErr("decode quiz", err)
	}
	return quiz, nil
}

func (s *DocStore) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, storeErr("list quizzes", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeErr("list quizzes", err)
		}
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, storeErr("decode quiz", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list quizzes", err)
	}
	return quizzes, nil
}

func (s *DocStore) ReplaceQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	data, err := json.Marshal(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET post_id = ?, data = ?::jsonb WHERE id = ?`,
		quiz.PostID, string(data), quiz.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Quiz{}, &domain.DuplicatePostIDError{PostID: quiz.PostID}
		}
		return domain.Quiz{}, storeErr("replace quiz", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Quiz{}, storeErr("replace quiz", err)
	}
	if n == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *DocStore) InsertAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	attempt.ID = domain.NewDocumentID()
	data, err := json.Marshal(attempt)
	if err != nil {
		return domain.Attempt{}, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, quiz_id, data) VALUES (?, ?, ?::jsonb)`,
		attempt.ID, attempt.QuizID, string(data),
	); err != nil {
		return domain.Attempt{}, storeErr("insert attempt", err)
	}
	return attempt, nil
}

func (s *DocStore) FindAttempt(ctx context.Context, id string) (domain.Attempt, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM attempts WHERE id = ?`, id).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.Attempt{}, domain.ErrAttemptNotFound
	case err != nil:
		return domain.Attempt{}, storeErr("find attempt", err)
	}
	var attempt domain.Attempt
	if err := json.Unmarshal(raw, &attempt); err != nil {
		return domain.Attempt{}, storeErr("decode attempt", err)
	}
	return attempt, nil
}

func (s *DocStore) ListAttemptsByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM attempts WHERE quiz_id = ? ORDER BY id`, quizID)
	if err != nil {
		return nil, storeErr("list attempts", err)
	}
	defer rows.Close()

	attempts := make([]domain.Attempt, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, storeErr("list attempts", err)
		}
		var attempt domain.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, storeErr("decode attempt", err)
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list attempts", err)
	}
	return attempts, nil
}

func (s *DocStore) ListAttemptIDsByQuiz(ctx context.Context, quizID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM attempts WHERE quiz_id = ? ORDER BY id`, quizID)
	if err != nil {
		return nil, storeErr("list attempt ids", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("list attempt ids", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list attempt ids", err)
	}
	return ids, nil
}

func (s *DocStore) DeleteAttempt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE id = ?`, id)
	if err != nil {
		return storeErr("delete attempt", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("delete attempt", err)
	}
	if n == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

// Begin opens a transaction and hands it back as an explicit unit of
// work; the caller threads it through the deletes that must share it
// and settles it exactly once.
func (s *DocStore) Begin(ctx context.Context) (app.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin", err)
	}
	return &unitOfWork{tx: tx}, nil
}

type unitOfWork struct {
	tx bun.Tx
}

func (u *unitOfWork) DeleteAttempts(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := u.tx.ExecContext(ctx, `DELETE FROM attempts WHERE id IN (?)`, bun.In(ids))
	if err != nil {
		return 0, storeErr("delete attempts", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete attempts", err)
	}
	return n, nil
}

func (u *unitOfWork) DeleteQuiz(ctx context.Context, id string) (int64, error) {
	res, err := u.tx.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return 0, storeErr("delete quiz", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("delete quiz", err)
	}
	return n, nil
}

func (u *unitOfWork) Commit() error {
	if err := u.tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	return u.tx.Rollback()
}

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
