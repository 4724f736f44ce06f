package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wawachat/internal/session"
)

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster()
	ch1, unsub1 := b.Subscribe()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Publish(session.Event{Name: session.EventStateChanged, Fields: map[string]any{"to": "ready"}})

	for i, ch := range []<-chan session.Event{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.Name != session.EventStateChanged {
				t.Fatalf("subscriber %d: unexpected event %q", i, ev.Name)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event", i)
		}
	}

	unsub1()
	b.Publish(session.Event{Name: session.EventTurnAdded})
	select {
	case ev := <-ch1:
		t.Fatalf("unsubscribed channel received %q", ev.Name)
	default:
	}
	select {
	case <-ch2:
	case <-time.After(time.Second):
		t.Fatalf("remaining subscriber missed event")
	}
}

func TestBroadcasterDropsSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	_, unsub := b.Subscribe()
	defer unsub()

	// Publish far past the channel buffer; must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(session.Event{Name: session.EventTurnAdded})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on slow subscriber")
	}
}

func TestBroadcasterServeHTTP(t *testing.T) {
	b := NewBroadcaster()
	srv := httptest.NewServer(http.HandlerFunc(b.ServeHTTP))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}

	// Wait for the handler's subscription to land before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		b.mu.Lock()
		n := len(b.subs)
		b.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("handler never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.Publish(session.Event{Name: session.EventTurnAdded, Fields: map[string]any{"role": "user"}})

	buf := make([]byte, 4096)
	got := ""
	for !strings.Contains(got, "event: turn_added") {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			got += string(buf[:n])
		}
		if err != nil {
			t.Fatalf("read stream (got %q): %v", got, err)
		}
	}
	if !strings.Contains(got, `"role":"user"`) {
		t.Fatalf("expected event data in stream, got %q", got)
	}
	cancel()
}
