package main

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestBroadcasterSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	s1 := b.Subscribe("session1")
	s2 := b.Subscribe("session1")
	s3 := b.Subscribe("session2")

	if b.Subscribers("session1") != 2 {
		t.Fatalf("expected 2 streams for session1, got %d", b.Subscribers("session1"))
	}
	if b.Subscribers("session2") != 1 {
		t.Fatalf("expected 1 stream for session2, got %d", b.Subscribers("session2"))
	}

	b.Unsubscribe(s1)
	if b.Subscribers("session1") != 1 {
		t.Fatalf("expected 1 stream for session1 after unsubscribe, got %d", b.Subscribers("session1"))
	}

	b.Unsubscribe(s2)
	b.Unsubscribe(s3)
	if b.Subscribers("session1") != 0 || b.Subscribers("session2") != 0 {
		t.Fatal("expected 0 streams after full unsubscribe")
	}
}

func TestBroadcasterDoubleUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe("session1")
	b.Unsubscribe(s)
	b.Unsubscribe(s) // should not panic
}

func TestPublish(t *testing.T) {
	b := NewBroadcaster()

	s1 := b.Subscribe("session1")
	s2 := b.Subscribe("session2")
	defer b.Unsubscribe(s1)
	defer b.Unsubscribe(s2)

	b.Publish("session1", "view", map[string]string{"letters": "AB"})

	select {
	case evt := <-s1.ch:
		if evt.name != "view" {
			t.Fatalf("expected event 'view', got %q", evt.name)
		}
		if string(evt.data) != `{"letters":"AB"}` {
			t.Fatalf("unexpected payload %s", evt.data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("session1 stream did not receive the event")
	}

	// s2 is on session2, should not receive.
	select {
	case <-s2.ch:
		t.Fatal("session2 stream should not receive session1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishSkipsFullChannel(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe("session1")

	for range sseChannelBuffer {
		b.Publish("session1", "view", "fill")
	}

	// This should not block.
	b.Publish("session1", "view", "overflow")

	if len(s.ch) != sseChannelBuffer {
		t.Fatalf("expected a full buffer, got %d", len(s.ch))
	}
	b.Unsubscribe(s)
}

func TestPublishUnencodable(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe("session1")
	defer b.Unsubscribe(s)

	b.Publish("session1", "view", func() {})
	if len(s.ch) != 0 {
		t.Fatal("unencodable values must not be sent")
	}
}

func TestBroadcasterConcurrent(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessionID := "session1"
			if i%2 == 0 {
				sessionID = "session2"
			}
			s := b.Subscribe(sessionID)
			b.Publish(sessionID, "view", i)
			b.Subscribers(sessionID)
			b.Unsubscribe(s)
		}(i)
	}
	wg.Wait()

	if b.Subscribers("session1") != 0 || b.Subscribers("session2") != 0 {
		t.Fatal("expected 0 streams after concurrent test")
	}
}

func TestServeSSE(t *testing.T) {
	b := NewBroadcaster()
	initial := View{SessionID: "session1", Letters: "A "}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.ServeSSE(w, r, "session1", &initial)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %s", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	readData := func() string {
		t.Helper()
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	var v View
	if err := json.Unmarshal([]byte(readData()), &v); err != nil {
		t.Fatalf("decode initial view: %v", err)
	}
	if v.Letters != "A " {
		t.Fatalf("expected initial letters 'A ', got %q", v.Letters)
	}

	// Wait for the stream to be registered before publishing.
	deadline := time.Now().Add(time.Second)
	for b.Subscribers("session1") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	b.Publish("session1", "view", View{SessionID: "session1", Letters: "AB"})

	if err := json.Unmarshal([]byte(readData()), &v); err != nil {
		t.Fatalf("decode published view: %v", err)
	}
	if v.Letters != "AB" {
		t.Fatalf("expected published letters 'AB', got %q", v.Letters)
	}
}
