package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/infra/memory"
)

func TestQuizLifecycleOverHTTP(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	// Create.
	quiz := postJSON(t, server, "/quizzes", sampleQuizBody(), http.StatusCreated)
	quizID := quiz["_id"].(string)
	if !domain.IsDocumentID(quizID) {
		t.Fatalf("expected document id, got %q", quizID)
	}

	// Duplicate post id conflicts.
	body := postJSON(t, server, "/quizzes", sampleQuizBody(), http.StatusConflict)
	if body["code"] != "duplicate_post_id" {
		t.Fatalf("expected duplicate_post_id, got %v", body["code"])
	}

	// Public view by post id carries no answers.
	view := getJSON(t, server, "/post-quizzes/123", http.StatusOK)
	questions := view["questions"].([]any)
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if _, ok := questions[0].(map[string]any)["answer"]; ok {
		t.Fatal("public view leaked the answer key")
	}

	// Submit a fully correct attempt.
	attempt := postJSON(t, server, "/attempts", map[string]any{
		"user":    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"quiz_id": quizID,
		"answers": []map[string]any{
			{"value": []int{3, 1}},
			{"value": 2},
			{"value": "Answer"},
		},
	}, http.StatusCreated)
	if attempt["total_score"].(float64) != 3 {
		t.Fatalf("expected total score 3, got %v", attempt["total_score"])
	}

	// Count mismatch is a 400 with a stable code.
	body = postJSON(t, server, "/attempts", map[string]any{
		"user":    "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		"quiz_id": quizID,
		"answers": []map[string]any{{"value": 2}},
	}, http.StatusBadRequest)
	if body["code"] != "answer_count_mismatch" {
		t.Fatalf("expected answer_count_mismatch, got %v", body["code"])
	}

	// Cascade delete removes the quiz and its attempts.
	doRequest(t, server, http.MethodDelete, "/quizzes/"+quizID, nil, http.StatusNoContent)
	getJSON(t, server, "/quizzes/"+quizID, http.StatusNotFound)
	attempts := getJSONList(t, server, "/attempts?quiz_id="+quizID, http.StatusOK)
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts after cascade, got %d", len(attempts))
	}

	// Re-deleting is not-found, which callers may treat as satisfied.
	doRequest(t, server, http.MethodDelete, "/quizzes/"+quizID, nil, http.StatusNotFound)
}

func TestCreateQuizValidationErrors(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	body := sampleQuizBody()
	body["questions"].([]map[string]any)[0]["type"] = "essay"
	resp := postJSON(t, server, "/quizzes", body, http.StatusBadRequest)
	if resp["code"] != "unknown_question_type" {
		t.Fatalf("expected unknown_question_type, got %v", resp["code"])
	}

	body = sampleQuizBody()
	body["questions"].([]map[string]any)[1]["answer"] = 9
	resp = postJSON(t, server, "/quizzes", body, http.StatusBadRequest)
	if resp["code"] != "answer_out_of_range" {
		t.Fatalf("expected answer_out_of_range, got %v", resp["code"])
	}
}

func TestStoreFailureIsClassified(t *testing.T) {
	server, store := newTestServer(t)
	defer server.Close()

	quiz := postJSON(t, server, "/quizzes", sampleQuizBody(), http.StatusCreated)
	store.FailNext("begin", io.ErrUnexpectedEOF)

	resp := doRequest(t, server, http.MethodDelete, "/quizzes/"+quiz["_id"].(string), nil, http.StatusServiceUnavailable)
	if resp["code"] != "store_unavailable" {
		t.Fatalf("expected store_unavailable, got %v", resp["code"])
	}
	// The raw store error never reaches the client.
	if resp["message"] == io.ErrUnexpectedEOF.Error() {
		t.Fatal("store internals leaked to the client")
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *memory.DocStore) {
	t.Helper()
	store := memory.NewDocStore()
	cache := memory.NewQuizCache(memory.NewStoreLoader(store.FindQuiz), time.Minute)
	feed := app.NewResultsFeed()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	quizzes := app.NewQuizService(store, cache, domain.DefaultRegistry, feed, log)
	attempts := app.NewAttemptService(store, cache, feed, log)

	mux := http.NewServeMux()
	NewHandler(quizzes, attempts, log).Register(mux)
	mux.HandleFunc("/ws/results", NewFeedHandler(quizzes, feed, log).ServeWS)
	return httptest.NewServer(mux), store
}

func sampleQuizBody() map[string]any {
	return map[string]any{
		"name":        "Spanish basics",
		"post_id":     123,
		"description": "warm-up quiz",
		"questions": []map[string]any{
			{"description": "pick the vowels", "type": "checkbox", "options": []string{"o1", "o2", "o3", "o4", "o5"}, "answer": []int{1, 3}},
			{"description": "pick the noun", "type": "radio", "options": []string{"o1", "o2", "o3", "o4", "o5"}, "answer": 2},
			{"description": "type the answer", "type": "text", "answer": "Answer"},
		},
	}
}

func postJSON(t *testing.T, server *httptest.Server, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	return doRequest(t, server, http.MethodPost, path, body, wantStatus)
}

func getJSON(t *testing.T, server *httptest.Server, path string, wantStatus int) map[string]any {
	t.Helper()
	return doRequest(t, server, http.MethodGet, path, nil, wantStatus)
}

func getJSONList(t *testing.T, server *httptest.Server, path string, wantStatus int) []any {
	t.Helper()
	resp, err := http.Get(server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: expected status %d, got %d", path, wantStatus, resp.StatusCode)
	}
	var list []any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return list
}

func doRequest(t *testing.T, server *httptest.Server, method, path string, body any, wantStatus int) map[string]any {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, path, wantStatus, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}
