package app

import (
	"context"
	"log/slog"

	"quiz-attempt-service/internal/domain"
)

// QuizService contains the quiz authoring use cases: validated creation
// and update, reads, and the cascade delete of a quiz together with all
// attempts referencing it.
type QuizService struct {
	store    Store
	cache    QuizCache
	registry *domain.Registry
	feed     *ResultsFeed
	log      *slog.Logger
}

func NewQuizService(store Store, cache QuizCache, registry *domain.Registry, feed *ResultsFeed, log *slog.Logger) *QuizService {
	return &QuizService{store: store, cache: cache, registry: registry, feed: feed, log: log}
}

// Create validates every question through the registry and inserts the
// quiz. The store rejects a duplicate post id.
func (s *QuizService) Create(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	questions, err := s.registry.ValidateQuestions(in.Questions)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.store.InsertQuiz(ctx, domain.Quiz{
		PostID:      in.PostID,
		Name:        in.Name,
		Description: in.Description,
		Questions:   questions,
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	s.log.Info("quiz created", "quiz_id", quiz.ID, "post_id", quiz.PostID, "questions", len(quiz.Questions))
	return quiz, nil
}

// Update replaces the quiz document wholesale, question list included,
// and invalidates the cached copy. Concurrent updates are
// last-writer-wins; there is no version check.
func (s *QuizService) Update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	questions, err := s.registry.ValidateQuestions(in.Questions)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.store.ReplaceQuiz(ctx, domain.Quiz{
		ID:          id,
		PostID:      in.PostID,
		Name:        in.Name,
		Description: in.Description,
		Questions:   questions,
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("quiz cache invalidation failed", "quiz_id", id, "err", err)
	}
	return quiz, nil
}

// Get returns the full quiz document, answer key included.
func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	return s.store.FindQuiz(ctx, id)
}

// GetByPostID returns the answers-stripped view of the quiz attached to
// a post, for serving to quiz takers.
func (s *QuizService) GetByPostID(ctx context.Context, postID int) (domain.QuizView, error) {
	quiz, err := s.store.FindQuizByPostID(ctx, postID)
	if err != nil {
		return domain.QuizView{}, err
	}
	return quiz.View(), nil
}

// List returns all quiz documents.
func (s *QuizService) List(ctx context.Context) ([]domain.Quiz, error) {
	return s.store.ListQuizzes(ctx)
}

// Delete removes the quiz and every attempt referencing it as one
// atomic unit. The collect-phase read runs outside the transaction;
// both deletes run inside it. Store errors abort the transaction and
// propagate without retry; re-issuing the delete for an absent quiz
// yields domain.ErrQuizNotFound, which callers may treat as
// already-satisfied.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	attemptIDs, err := s.store.ListAttemptIDsByQuiz(ctx, id)
	if err != nil {
		return err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}

	// Deleted count may lag the collected set when attempts were removed
	// concurrently; only the quiz row decides the outcome.
	if _, err := uow.DeleteAttempts(ctx, attemptIDs); err != nil {
		_ = uow.Rollback()
		return err
	}
	n, err := uow.DeleteQuiz(ctx, id)
	if err != nil {
		_ = uow.Rollback()
		return err
	}
	if n == 0 {
		_ = uow.Rollback()
		return domain.ErrQuizNotFound
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("quiz cache invalidation failed", "quiz_id", id, "err", err)
	}
	s.feed.Close(id)
	s.log.Info("quiz deleted", "quiz_id", id, "attempts", len(attemptIDs))
	return nil
}
