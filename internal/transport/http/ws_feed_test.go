package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/domain"
)

func TestFeedStreamsResultsOverWebsocket(t *testing.T) {
	server, store := newTestServer(t)
	defer server.Close()

	ctx := context.Background()
	quiz, err := store.InsertQuiz(ctx, seedQuiz())
	if err != nil {
		t.Fatalf("insert quiz: %v", err)
	}

	conn := dialFeed(t, server, quiz.ID)
	defer conn.Close()

	// Give the handler a moment to register the subscription.
	time.Sleep(50 * time.Millisecond)

	attempt := postJSON(t, server, "/attempts", map[string]any{
		"user":    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"quiz_id": quiz.ID,
		"answers": []map[string]any{{"value": 1}},
	}, http.StatusCreated)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var result domain.AttemptResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if result.AttemptID != attempt["_id"].(string) {
		t.Fatalf("expected attempt %v, got %+v", attempt["_id"], result)
	}
	if result.TotalScore != 1 || result.MaxScore != 1 {
		t.Fatalf("unexpected score in %+v", result)
	}
}

func TestFeedClosesWhenQuizDeleted(t *testing.T) {
	server, store := newTestServer(t)
	defer server.Close()

	ctx := context.Background()
	quiz, err := store.InsertQuiz(ctx, seedQuiz())
	if err != nil {
		t.Fatalf("insert quiz: %v", err)
	}

	conn := dialFeed(t, server, quiz.ID)
	defer conn.Close()
	time.Sleep(50 * time.Millisecond)

	doRequest(t, server, http.MethodDelete, "/quizzes/"+quiz.ID, nil, http.StatusNoContent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var result domain.AttemptResult
	err = conn.ReadJSON(&result)
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close after quiz deletion, got %v", err)
	}
}

func TestFeedRejectsUnknownQuiz(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	url := wsURL(server.URL) + "/ws/results?quiz_id=" + domain.NewDocumentID()
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure for unknown quiz")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before upgrade, got %+v", resp)
	}
}

func dialFeed(t *testing.T, server *httptest.Server, quizID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server.URL)+"/ws/results?quiz_id="+quizID, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	return conn
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func seedQuiz() domain.Quiz {
	return domain.Quiz{
		PostID: 777,
		Name:   "live quiz",
		Questions: []domain.Question{
			{
				Description: "pick one",
				Type:        domain.QuestionRadio,
				Options:     []string{"a", "b"},
				Answer:      domain.RadioAnswer(1),
			},
		},
	}
}
