package app

import (
	"context"

	"quiz-attempt-service/internal/domain"
)

// Store is the persistence gateway for quiz and attempt documents.
// Implementations return domain.ErrQuizNotFound / domain.ErrAttemptNotFound
// for absent documents, *domain.DuplicatePostIDError on a post id
// collision, and wrap every other failure in *domain.StoreError.
type Store interface {
	InsertQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	FindQuiz(ctx context.Context, id string) (domain.Quiz, error)
	FindQuizByPostID(ctx context.Context, postID int) (domain.Quiz, error)
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	ReplaceQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)

	InsertAttempt(ctx context.Context, attempt domain.Attempt) (domain.Attempt, error)
	FindAttempt(ctx context.Context, id string) (domain.Attempt, error)
	ListAttemptsByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error)
	ListAttemptIDsByQuiz(ctx context.Context, quizID string) ([]string, error)
	DeleteAttempt(ctx context.Context, id string) error

	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork groups store deletes that must commit or abort together.
// The holder settles it exactly once, with Commit or Rollback.
type UnitOfWork interface {
	DeleteAttempts(ctx context.Context, ids []string) (int64, error)
	DeleteQuiz(ctx context.Context, id string) (int64, error)
	Commit() error
	Rollback() error
}

// QuizCache serves quiz documents on the hot read paths, typically
// backed by Redis in front of the store.
type QuizCache interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	Invalidate(ctx context.Context, id string) error
}
