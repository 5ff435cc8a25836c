package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// DocStore is an in-memory implementation of the app.Store gateway,
// used in tests and when running without Postgres. Its unit of work
// stages deletes and applies them atomically on Commit.
type DocStore struct {
	mu       sync.RWMutex
	quizzes  map[string]domain.Quiz
	attempts map[string]domain.Attempt

	// failures maps an operation name to an error returned (once) the
	// next time that operation runs; used to exercise abort paths.
	failures map[string]error
}

func NewDocStore() *DocStore {
	return &DocStore{
		quizzes:  make(map[string]domain.Quiz),
		attempts: make(map[string]domain.Attempt),
		failures: make(map[string]error),
	}
}

// FailNext makes the next call of the named operation ("begin",
// "delete_attempts", "delete_quiz", "commit") fail with err.
func (s *DocStore) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *DocStore) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *DocStore) InsertQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.quizzes {
		if existing.PostID == quiz.PostID {
			return domain.Quiz{}, &domain.DuplicatePostIDError{PostID: quiz.PostID}
		}
	}
	quiz.ID = domain.NewDocumentID()
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *DocStore) FindQuiz(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *DocStore) FindQuizByPostID(_ context.Context, postID int) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.PostID == postID {
			return quiz, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (s *DocStore) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (s *DocStore) ReplaceQuiz(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = quiz
	return quiz, nil
}

func (s *DocStore) InsertAttempt(_ context.Context, attempt domain.Attempt) (domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt.ID = domain.NewDocumentID()
	s.attempts[attempt.ID] = attempt
	return attempt, nil
}

func (s *DocStore) FindAttempt(_ context.Context, id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[id]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *DocStore) ListAttemptsByQuiz(_ context.Context, quizID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempts := make([]domain.Attempt, 0)
	for _, attempt := range s.attempts {
		if attempt.QuizID == quizID {
			attempts = append(attempts, attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].ID < attempts[j].ID })
	return attempts, nil
}

func (s *DocStore) ListAttemptIDsByQuiz(ctx context.Context, quizID string) ([]string, error) {
	attempts, err := s.ListAttemptsByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(attempts))
	for i, attempt := range attempts {
		ids[i] = attempt.ID
	}
	return ids, nil
}

func (s *DocStore) DeleteAttempt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[id]; !ok {
		return domain.ErrAttemptNotFound
	}
	delete(s.attempts, id)
	return nil
}

func (s *DocStore) Begin(_ context.Context) (app.UnitOfWork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("begin"); err != nil {
		return nil, &domain.StoreError{Op: "begin", Err: err}
	}
	return &unitOfWork{store: s}, nil
}

// unitOfWork stages deletes against the store and applies them under
// one lock acquisition on Commit.
type unitOfWork struct {
	store      *DocStore
	attemptIDs []string
	quizID     string
	settled    bool
}

func (u *unitOfWork) DeleteAttempts(_ context.Context, ids []string) (int64, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err := u.store.takeFailure("delete_attempts"); err != nil {
		return 0, &domain.StoreError{Op: "delete attempts", Err: err}
	}
	var n int64
	for _, id := range ids {
		if _, ok := u.store.attempts[id]; ok {
			u.attemptIDs = append(u.attemptIDs, id)
			n++
		}
	}
	return n, nil
}

func (u *unitOfWork) DeleteQuiz(_ context.Context, id string) (int64, error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if err := u.store.takeFailure("delete_quiz"); err != nil {
		return 0, &domain.StoreError{Op: "delete quiz", Err: err}
	}
	if _, ok := u.store.quizzes[id]; !ok {
		return 0, nil
	}
	u.quizID = id
	return 1, nil
}

func (u *unitOfWork) Commit() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.settled {
		return nil
	}
	if err := u.store.takeFailure("commit"); err != nil {
		u.settled = true
		return &domain.StoreError{Op: "commit", Err: err}
	}
	for _, id := range u.attemptIDs {
		delete(u.store.attempts, id)
	}
	if u.quizID != "" {
		delete(u.store.quizzes, u.quizID)
	}
	u.settled = true
	return nil
}

func (u *unitOfWork) Rollback() error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.attemptIDs = nil
	u.quizID = ""
	u.settled = true
	return nil
}
