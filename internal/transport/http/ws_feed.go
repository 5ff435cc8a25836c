package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-attempt-service/internal/app"
)

// FeedHandler streams scored-attempt summaries for a quiz over a
// websocket. The stream ends when the quiz is cascade-deleted.
type FeedHandler struct {
	quizzes  *app.QuizService
	feed     *app.ResultsFeed
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewFeedHandler(quizzes *app.QuizService, feed *app.ResultsFeed, log *slog.Logger) *FeedHandler {
	return &FeedHandler{
		quizzes: quizzes,
		feed:    feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeWS upgrades the request and forwards live results until the
// client disconnects or the quiz is deleted.
func (h *FeedHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quiz_id")
	if quizID == "" {
		http.Error(w, "missing quiz_id", http.StatusBadRequest)
		return
	}
	if _, err := h.quizzes.Get(r.Context(), quizID); err != nil {
		http.Error(w, "quiz not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	results, cancel := h.feed.Subscribe(quizID)
	defer cancel()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case result, ok := <-results:
			if !ok {
				// Quiz deleted; tell the client the stream is over.
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz deleted"))
				return
			}
			if err := conn.WriteJSON(result); err != nil {
				h.log.Warn("ws write error", "err", err)
				return
			}
		case <-gone:
			return
		}
	}
}
