package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// sseEvent is one named server-sent event.
type sseEvent struct {
	name string
	data []byte
}

// subscriber is one open event stream on a session, typically a browser tab
// rendering the grid.
type subscriber struct {
	ch        chan sseEvent
	sessionID string
}

// Broadcaster fans session render events out to open streams.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*subscriber]struct{})}
}

// Subscribe opens a stream for a session.
func (b *Broadcaster) Subscribe(sessionID string) *subscriber {
	sub := &subscriber{
		ch:        make(chan sseEvent, sseChannelBuffer),
		sessionID: sessionID,
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a stream and closes its channel. Safe to call twice.
func (b *Broadcaster) Unsubscribe(sub *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
	b.mu.Unlock()
}

// Publish JSON-encodes v and sends it as event name to every stream of the
// session. Streams whose buffer is full miss the event.
func (b *Broadcaster) Publish(sessionID, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logError("encode event failed", "event", name, "error", err)
		return
	}
	evt := sseEvent{name: name, data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if sub.sessionID != sessionID {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			logDebug("event dropped for slow stream", "session", sessionID, "event", name)
		}
	}
}

// Subscribers counts open streams for a session.
func (b *Broadcaster) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for sub := range b.subs {
		if sub.sessionID == sessionID {
			n++
		}
	}
	return n
}

// ServeSSE streams a session's events until the client goes away. initial, if
// not nil, is sent first so a new stream can draw immediately.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string, initial *View) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := b.Subscribe(sessionID)
	defer b.Unsubscribe(sub)

	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			writeEvent(w, sseEvent{name: "view", data: data})
			flusher.Flush()
		}
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-sub.ch:
			if !ok {
				return
			}
			writeEvent(w, evt)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, evt sseEvent) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.name, evt.data)
}
