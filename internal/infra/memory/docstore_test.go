package memory

import (
	"context"
	"errors"
	"testing"

	"quiz-attempt-service/internal/domain"
)

func TestUnitOfWorkCommitAppliesStagedDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()

	quiz, err := store.InsertQuiz(ctx, domain.Quiz{PostID: 1, Name: "q"})
	if err != nil {
		t.Fatalf("insert quiz: %v", err)
	}
	attempt, err := store.InsertAttempt(ctx, domain.Attempt{QuizID: quiz.ID})
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if n, err := uow.DeleteAttempts(ctx, []string{attempt.ID}); err != nil || n != 1 {
		t.Fatalf("delete attempts: n=%d err=%v", n, err)
	}
	if n, err := uow.DeleteQuiz(ctx, quiz.ID); err != nil || n != 1 {
		t.Fatalf("delete quiz: n=%d err=%v", n, err)
	}

	// Nothing is applied before commit.
	if _, err := store.FindQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("expected quiz visible before commit, got %v", err)
	}

	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := store.FindQuiz(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz gone after commit, got %v", err)
	}
	if _, err := store.FindAttempt(ctx, attempt.ID); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected attempt gone after commit, got %v", err)
	}
}

func TestUnitOfWorkRollbackDiscardsStagedDeletes(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()

	quiz, err := store.InsertQuiz(ctx, domain.Quiz{PostID: 1, Name: "q"})
	if err != nil {
		t.Fatalf("insert quiz: %v", err)
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := uow.DeleteQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}
	if err := uow.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if _, err := store.FindQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("expected quiz to survive rollback, got %v", err)
	}
}

func TestDeleteAttemptsToleratesMissingIDs(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()

	attempt, err := store.InsertAttempt(ctx, domain.Attempt{QuizID: "q"})
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}

	uow, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	n, err := uow.DeleteAttempts(ctx, []string{attempt.ID, domain.NewDocumentID()})
	if err != nil {
		t.Fatalf("delete attempts: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 staged delete, got %d", n)
	}
	if err := uow.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestInsertQuizRejectsDuplicatePostID(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()

	if _, err := store.InsertQuiz(ctx, domain.Quiz{PostID: 42}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := store.InsertQuiz(ctx, domain.Quiz{PostID: 42})
	var duplicateErr *domain.DuplicatePostIDError
	if !errors.As(err, &duplicateErr) {
		t.Fatalf("expected DuplicatePostIDError, got %v", err)
	}
}

func TestFailNextInjectsSingleFailure(t *testing.T) {
	ctx := context.Background()
	store := NewDocStore()
	store.FailNext("begin", errors.New("down"))

	if _, err := store.Begin(ctx); err == nil {
		t.Fatal("expected injected begin failure")
	}
	if _, err := store.Begin(ctx); err != nil {
		t.Fatalf("expected failure consumed, got %v", err)
	}
}
