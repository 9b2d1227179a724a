package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // session key -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(key string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

// Subscribers returns the number of open streams for key.
func (sm *StreamManager) Subscribers(key string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[key])
}

func (sm *StreamManager) Broadcast(key string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "session", key)
		}
	}
}

// SubscribeEvents handles the GET .../events request (SSE).
// The optional watch parameter filters diffs by field: answers, step, completed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	key := domain.SessionKey(chi.URLParam(r, "flowID"), chi.URLParam(r, "sessionID"))
	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		for _, field := range strings.Split(watch, ",") {
			watchList = append(watchList, strings.TrimSpace(field))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(key)
	defer cancel()
	slog.Info("SSE: Subscribing to session updates", "session", key)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE Client Disconnected", "session", key)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !matchesWatch(msg, watchList) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesWatch(msg string, watchList []string) bool {
	if len(watchList) == 0 {
		return true
	}
	var diff domain.SessionDiff
	if err := json.Unmarshal([]byte(msg), &diff); err != nil {
		return true
	}
	for _, field := range watchList {
		switch field {
		case "answers":
			if len(diff.Answers) > 0 {
				return true
			}
		case "step":
			if diff.CurrentStepIndex != nil {
				return true
			}
		case "completed":
			if diff.Completed != nil {
				return true
			}
		}
	}
	return false
}
