package app

import (
	"sync"

	"quiz-attempt-service/internal/domain"
)

// ResultsFeed fans out scored-attempt summaries to live subscribers,
// one stream per quiz. Subscribing to a quiz that never receives
// results is cheap; the per-quiz entry is dropped with its last
// subscriber or when the quiz is deleted.
type ResultsFeed struct {
	mu      sync.Mutex
	streams map[string]map[chan domain.AttemptResult]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{streams: make(map[string]map[chan domain.AttemptResult]struct{})}
}

// Subscribe returns a channel of results for the quiz. The caller must
// invoke the returned cancel function to avoid leaks; the channel is
// closed by cancel or when the quiz is deleted.
func (f *ResultsFeed) Subscribe(quizID string) (<-chan domain.AttemptResult, func()) {
	ch := make(chan domain.AttemptResult, 8)

	f.mu.Lock()
	subscribers, ok := f.streams[quizID]
	if !ok {
		subscribers = make(map[chan domain.AttemptResult]struct{})
		f.streams[quizID] = subscribers
	}
	subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subscribers, ok := f.streams[quizID]
		if !ok {
			return
		}
		if _, ok := subscribers[ch]; ok {
			delete(subscribers, ch)
			close(ch)
		}
		if len(subscribers) == 0 {
			delete(f.streams, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers a result to every subscriber of the quiz. Slow
// subscribers have their oldest pending update dropped rather than
// blocking the broadcast.
func (f *ResultsFeed) Publish(quizID string, result domain.AttemptResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.streams[quizID] {
		select {
		case ch <- result:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- result
		}
	}
}

// Close drops the quiz's stream and closes every subscriber channel,
// signalling that no further results will arrive.
func (f *ResultsFeed) Close(quizID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.streams[quizID] {
		close(ch)
	}
	delete(f.streams, quizID)
}
