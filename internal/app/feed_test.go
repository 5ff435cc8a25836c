package app_test

import (
	"context"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

func TestFeedDeliversScoredAttempts(t *testing.T) {
	feed := app.NewResultsFeed()
	results, cancel := feed.Subscribe("quiz-1")
	defer cancel()

	feed.Publish("quiz-1", domain.AttemptResult{AttemptID: "a1", TotalScore: 2, MaxScore: 3})

	select {
	case result := <-results:
		if result.AttemptID != "a1" || result.TotalScore != 2 {
			t.Fatalf("unexpected result %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a result")
	}
}

func TestFeedDropsStaleUpdatesForSlowSubscribers(t *testing.T) {
	feed := app.NewResultsFeed()
	results, cancel := feed.Subscribe("quiz-1")
	defer cancel()

	// More publishes than the channel buffers; none may block.
	for i := 0; i < 20; i++ {
		feed.Publish("quiz-1", domain.AttemptResult{AttemptID: "a", TotalScore: i})
	}

	var last domain.AttemptResult
	for {
		select {
		case result := <-results:
			last = result
			continue
		default:
		}
		break
	}
	if last.TotalScore != 19 {
		t.Fatalf("expected newest update to survive, got %+v", last)
	}
}

func TestFeedClosesOnQuizDeletion(t *testing.T) {
	feed := app.NewResultsFeed()
	results, cancel := feed.Subscribe("quiz-1")

	feed.Close("quiz-1")

	if _, ok := <-results; ok {
		t.Fatal("expected closed channel after quiz deletion")
	}
	// Cancel after close must be a no-op, not a double close.
	cancel()
}

func TestSubmitPublishesToFeed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	quiz, err := env.quizzes.Create(ctx, sampleQuizInput())
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	results, cancel := env.feed.Subscribe(quiz.ID)
	defer cancel()

	attempt, err := env.attempts.Submit(ctx, domain.AttemptInput{
		User:   testUser,
		QuizID: quiz.ID,
		Answers: []domain.AttemptAnswer{
			{Value: []int{3, 1}},
			{Value: 2},
			{Value: "Answer"},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case result := <-results:
		if result.AttemptID != attempt.ID || result.TotalScore != 3 || result.MaxScore != 3 {
			t.Fatalf("unexpected feed result %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatal("expected feed result after submit")
	}
}
