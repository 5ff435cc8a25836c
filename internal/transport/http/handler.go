package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/domain"
)

// Handler serves the REST API over the quiz and attempt use cases.
type Handler struct {
	quizzes  *app.QuizService
	attempts *app.AttemptService
	log      *slog.Logger
}

func NewHandler(quizzes *app.QuizService, attempts *app.AttemptService, log *slog.Logger) *Handler {
	return &Handler{quizzes: quizzes, attempts: attempts, log: log}
}

// Register wires the routes into the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /quizzes", h.createQuiz)
	mux.HandleFunc("GET /quizzes", h.listQuizzes)
	mux.HandleFunc("GET /quizzes/{id}", h.getQuiz)
	mux.HandleFunc("PUT /quizzes/{id}", h.updateQuiz)
	mux.HandleFunc("DELETE /quizzes/{id}", h.deleteQuiz)
	mux.HandleFunc("GET /post-quizzes/{postID}", h.getQuizByPostID)
	mux.HandleFunc("POST /attempts", h.submitAttempt)
	mux.HandleFunc("GET /attempts", h.listAttempts)
	mux.HandleFunc("GET /attempts/{id}", h.getAttempt)
	mux.HandleFunc("DELETE /attempts/{id}", h.deleteAttempt)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in domain.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	var in domain.QuizInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getQuizByPostID(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.Atoi(r.PathValue("postID"))
	if err != nil {
		h.writeError(w, &domain.ValidationError{Field: "post_id", Message: "must be an integer"})
		return
	}
	view, err := h.quizzes.GetByPostID(r.Context(), postID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var in domain.AttemptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, &domain.ValidationError{Field: "body", Message: "invalid JSON"})
		return
	}
	attempt, err := h.attempts.Submit(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, attempt)
}

func (h *Handler) listAttempts(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quiz_id")
	if quizID == "" {
		h.writeError(w, &domain.ValidationError{Field: "quiz_id", Message: "query parameter is required"})
		return
	}
	attempts, err := h.attempts.ListByQuiz(r.Context(), quizID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.attempts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) deleteAttempt(w http.ResponseWriter, r *http.Request) {
	if err := h.attempts.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps every domain error to a stable machine-readable code.
// Store internals are logged but never leaked to clients.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		validationErr  *domain.ValidationError
		unknownTypeErr *domain.UnknownQuestionTypeError
		outOfRangeErr  *domain.AnswerOutOfRangeError
		countErr       *domain.AnswerCountMismatchError
		duplicateErr   *domain.DuplicatePostIDError
		storeErr       *domain.StoreError
	)
	switch {
	case errors.As(err, &validationErr):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "validation_error", Message: validationErr.Error()})
	case errors.As(err, &unknownTypeErr):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "unknown_question_type", Message: unknownTypeErr.Error()})
	case errors.As(err, &outOfRangeErr):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "answer_out_of_range", Message: outOfRangeErr.Error()})
	case errors.As(err, &countErr):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Code: "answer_count_mismatch", Message: countErr.Error()})
	case errors.As(err, &duplicateErr):
		h.writeJSON(w, http.StatusConflict, errorBody{Code: "duplicate_post_id", Message: duplicateErr.Error()})
	case errors.Is(err, domain.ErrQuizNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Code: "quiz_not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrAttemptNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Code: "attempt_not_found", Message: err.Error()})
	case errors.As(err, &storeErr):
		h.log.Error("store failure", "op", storeErr.Op, "err", storeErr.Err)
		h.writeJSON(w, http.StatusServiceUnavailable, errorBody{Code: "store_unavailable", Message: "temporary storage failure, retry later"})
	default:
		h.log.Error("unhandled error", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Code: "internal", Message: "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("write response", "err", err)
	}
}
