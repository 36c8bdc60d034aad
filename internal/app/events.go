package app

import (
	"sync"
	"time"
)

// ResponseEvent is the live-feed view of one stored submission.
type ResponseEvent struct {
	SurveyID      string    `json:"surveyId"`
	ResponseID    string    `json:"responseId"`
	ParticipantID string    `json:"participantId"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ResponseHub fans submission events out to per-survey subscribers
// (the admin live feed). Slow subscribers have their oldest pending
// event dropped rather than blocking the publisher.
type ResponseHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan ResponseEvent]struct{}
}

func NewResponseHub() *ResponseHub {
	return &ResponseHub{subscribers: make(map[string]map[chan ResponseEvent]struct{})}
}

// Publish delivers the event to every subscriber of its survey.
func (h *ResponseHub) Publish(event ResponseEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[event.SurveyID] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribe returns a channel of events for one survey. The caller
// must invoke the returned cancel function to avoid leaks.
func (h *ResponseHub) Subscribe(surveyID string) (<-chan ResponseEvent, func()) {
	ch := make(chan ResponseEvent, 8)

	h.mu.Lock()
	if h.subscribers[surveyID] == nil {
		h.subscribers[surveyID] = make(map[chan ResponseEvent]struct{})
	}
	h.subscribers[surveyID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if subs, ok := h.subscribers[surveyID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(h.subscribers, surveyID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}
