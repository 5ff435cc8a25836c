package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"quiz-attempt-service/internal/domain"
)

// AttemptService scores candidate attempts against a quiz snapshot and
// serves the resulting attempt documents.
type AttemptService struct {
	store   Store
	quizzes QuizCache
	feed    *ResultsFeed
	log     *slog.Logger
}

func NewAttemptService(store Store, quizzes QuizCache, feed *ResultsFeed, log *slog.Logger) *AttemptService {
	return &AttemptService{store: store, quizzes: quizzes, feed: feed, log: log}
}

// Submit scores the candidate answers against the quiz and persists the
// resulting attempt. On an answer count mismatch nothing is persisted.
// A persistence failure propagates un-retried.
func (s *AttemptService) Submit(ctx context.Context, in domain.AttemptInput) (domain.Attempt, error) {
	user, err := uuid.Parse(in.User)
	if err != nil {
		return domain.Attempt{}, &domain.ValidationError{Field: "user", Message: "must be a valid UUID"}
	}

	quiz, err := s.quizzes.GetQuiz(ctx, in.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}

	answers, total, err := scoreAnswers(quiz, in.Answers)
	if err != nil {
		return domain.Attempt{}, err
	}

	attempt, err := s.store.InsertAttempt(ctx, domain.Attempt{
		User:       user.String(),
		QuizID:     quiz.ID,
		Answers:    answers,
		TotalScore: total,
	})
	if err != nil {
		return domain.Attempt{}, err
	}

	s.feed.Publish(quiz.ID, domain.AttemptResult{
		AttemptID:  attempt.ID,
		User:       attempt.User,
		TotalScore: attempt.TotalScore,
		MaxScore:   quiz.MaxScore(),
	})
	s.log.Info("attempt scored", "attempt_id", attempt.ID, "quiz_id", quiz.ID, "total_score", total)
	return attempt, nil
}

// Get returns an attempt document by id.
func (s *AttemptService) Get(ctx context.Context, id string) (domain.Attempt, error) {
	return s.store.FindAttempt(ctx, id)
}

// ListByQuiz returns all attempts referencing a quiz.
func (s *AttemptService) ListByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	return s.store.ListAttemptsByQuiz(ctx, quizID)
}

// Delete removes a single attempt. It has no cascade effects.
func (s *AttemptService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteAttempt(ctx, id)
}

// scoreAnswers walks questions and candidate answers in lock step;
// position i of one corresponds to position i of the other. Candidate
// values are never bounds-checked: an out-of-range or mismatched value
// compares unequal and scores as incorrect.
func scoreAnswers(quiz domain.Quiz, candidates []domain.AttemptAnswer) ([]domain.ScoredAnswer, int, error) {
	if len(candidates) != len(quiz.Questions) {
		return nil, 0, &domain.AnswerCountMismatchError{Want: len(quiz.Questions), Got: len(candidates)}
	}
	scored := make([]domain.ScoredAnswer, len(candidates))
	total := 0
	for i, question := range quiz.Questions {
		correct := question.Answer.Matches(candidates[i].Value)
		scored[i] = domain.ScoredAnswer{Value: candidates[i].Value, IsCorrect: correct}
		if correct {
			total++
		}
	}
	return scored, total, nil
}
