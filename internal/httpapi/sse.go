package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"wawachat/internal/session"
)

// Broadcaster fans session events out to SSE subscribers. It satisfies
// session.EventPublisher; Publish never blocks — a subscriber that cannot
// keep up has events dropped rather than stalling the session.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan session.Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan session.Event]struct{})}
}

// Publish implements session.EventPublisher.
func (b *Broadcaster) Publish(e session.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Slow subscriber: drop.
		}
	}
}

// Subscribe registers a new subscriber channel. Call the returned func to
// unsubscribe and release it.
func (b *Broadcaster) Subscribe() (<-chan session.Event, func()) {
	ch := make(chan session.Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// ServeHTTP streams session events as server-sent events until the client
// disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			data, err := json.Marshal(ev.Fields)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
			flusher.Flush()
		}
	}
}
