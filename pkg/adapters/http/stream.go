package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// StreamManager fans editor responses out to the SSE clients of a document.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // document -> set of channels
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Subscribe registers a client of document. Call the returned func to leave.
func (sm *StreamManager) Subscribe(document string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 32)
	if _, ok := sm.subscribers[document]; !ok {
		sm.subscribers[document] = make(map[chan<- string]struct{})
	}
	sm.subscribers[document][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[document]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, document)
			}
		}
	}
}

// Broadcast sends msg to every client of document. Slow clients miss messages.
func (sm *StreamManager) Broadcast(document string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[document] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// SubscribeEvents handles GET /documents/{name}/events. The optional watch
// query parameter filters by response name, e.g. ?watch=UpdateNodeGraph,Rerender.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, name DocumentName, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var watch []string
	if params.Watch != nil && *params.Watch != "" {
		for _, field := range strings.Split(*params.Watch, ",") {
			watch = append(watch, `"response":"`+strings.TrimSpace(field)+`"`)
		}
	}

	ch, cancel := s.Streams.Subscribe(name)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Debug("SSE client subscribed", "document", name)

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected", "document", name)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !matchesAny(msg, watch) {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func matchesAny(msg string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}
