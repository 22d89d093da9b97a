package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/toolshed/internal/logging"
	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// Stream event names. Diffs go out unnamed.
const (
	StreamNotification = "notification"
	StreamCheckout     = "checkout"
)

// Message is one server-sent event. An empty Name is a snapshot diff.
type Message struct {
	Name string
	Data string
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Message]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Message]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a buffered channel for the session. The returned
// function unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Message]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers reports how many streams follow a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast queues a snapshot diff for every subscriber of the session.
func (sm *StreamManager) Broadcast(sessionID string, data string) {
	sm.send(sessionID, Message{Data: data})
}

// Hooks publishes notification and checkout events to the session's
// subscribers, including the ones timers fire outside any request.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNotification: func(e *domain.NotificationEvent) {
			sm.publish(e.SessionID, StreamNotification, e)
		},
		OnCheckout: func(e *domain.CheckoutEvent) {
			sm.publish(e.SessionID, StreamCheckout, e)
		},
	}
}

func (sm *StreamManager) publish(sessionID, name string, event any) {
	if sessionID == "" || sm.Subscribers(sessionID) == 0 {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "session_id", sessionID, "event", name, "err", err)
		return
	}
	sm.send(sessionID, Message{Name: name, Data: string(data)})
}

func (sm *StreamManager) send(sessionID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// watches reports whether a diff touches any of the watched fields.
func watches(diff *domain.SnapshotDiff, fields []string) bool {
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "route":
			if diff.Route != nil {
				return true
			}
		case "compare":
			if diff.Compare != nil || diff.CompareCleared {
				return true
			}
		case "wizards":
			if len(diff.Wizards) > 0 {
				return true
			}
		case "context":
			if diff.Context != nil {
				return true
			}
		}
	}
	return false
}

// wants reports whether a subscriber with the given watch list receives msg.
// An empty list receives everything.
func wants(msg Message, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	switch msg.Name {
	case "":
		var diff domain.SnapshotDiff
		if err := json.Unmarshal([]byte(msg.Data), &diff); err != nil {
			return true
		}
		return watches(&diff, fields)
	case StreamNotification:
		return watched(fields, "notifications")
	case StreamCheckout:
		return watched(fields, "checkout")
	}
	return true
}

func watched(fields []string, name string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) == name {
			return true
		}
	}
	return false
}

// SubscribeEvents handles GET /sessions/{sid}/events. Unnamed events carry
// snapshot diffs of request-driven changes. Named "notification" and
// "checkout" events carry the lifecycle events behind toast expiry and
// payment settlement. ?watch=route,compare,wizards,context,notifications,checkout
// filters them.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "sid")
	var watchList []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		watchList = strings.Split(raw, ",")
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !wants(msg, watchList) {
				continue
			}
			if msg.Name != "" {
				fmt.Fprintf(w, "event: %s\n", msg.Name)
			}
			fmt.Fprintf(w, "data: %s\n\n", msg.Data)
			flusher.Flush()
		}
	}
}
