package store

import (
	"context"
	"sync"
)

// hub fans change notifications out to live subscribers. Sends never block:
// a subscriber that falls behind misses notifications, and its next refresh
// picks up the state anyway.
type hub struct {
	mu     sync.Mutex
	subs   map[chan Change]struct{}
	closed bool
	done   chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan Change]struct{}), done: make(chan struct{})}
}

func (h *hub) subscribe(ctx context.Context) (<-chan Change, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	ch := make(chan Change, 64)
	h.subs[ch] = struct{}{}
	go func() {
		select {
		case <-ctx.Done():
			h.drop(ch)
		case <-h.done:
		}
	}()
	return ch, nil
}

func (h *hub) drop(ch chan Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *hub) publish(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
