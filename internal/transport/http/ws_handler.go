package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveResponseFeed streams response events for one survey to an
// admin over a websocket. Events are whatever the hub publishes; the
// connection closes when either side goes away.
func (h *Handler) serveResponseFeed(w http.ResponseWriter, r *http.Request) {
	surveyID := r.PathValue("id")
	if _, err := h.surveys.Get(r.Context(), surveyID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.hub.Subscribe(surveyID)
	defer cancel()

	// Drain reads so client close frames are processed.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
