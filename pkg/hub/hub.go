// Package hub fans out dashboard updates to websocket subscribers.
// Each feed (status snapshots, transcript events) gets its own Hub; the
// assistant pushes payloads in and every connected browser receives
// them. Subscribers that stop draining are dropped rather than allowed
// to stall the feed.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Hub owns the subscriber set for one feed and serializes all
// membership changes and broadcasts through its Run loop.
type Hub struct {
	feed   string
	logger *slog.Logger

	subs map[*subscriber]struct{}

	join  chan *subscriber
	leave chan *subscriber
	cast  chan []byte

	done     chan struct{}
	stopOnce sync.Once

	// mu guards subs for Subscribers, the only reader outside Run.
	mu sync.RWMutex
}

// New creates a hub for the named feed. Call Run in a goroutine before
// serving connections.
func New(feed string) *Hub {
	return &Hub{
		feed:   feed,
		logger: slog.Default().With("component", "hub", "feed", feed),
		subs:   make(map[*subscriber]struct{}),
		join:   make(chan *subscriber),
		leave:  make(chan *subscriber),
		cast:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// Run processes joins, leaves, and broadcasts until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.join:
			h.mu.Lock()
			h.subs[sub] = struct{}{}
			n := len(h.subs)
			h.mu.Unlock()
			h.logger.Debug("subscriber joined", "total", n)

		case sub := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subs[sub]; ok {
				delete(h.subs, sub)
				close(sub.out)
			}
			n := len(h.subs)
			h.mu.Unlock()
			h.logger.Debug("subscriber left", "remaining", n)

		case payload := <-h.cast:
			h.mu.Lock()
			for sub := range h.subs {
				select {
				case sub.out <- payload:
				default:
					// The subscriber's buffer is full, so it is not
					// keeping up. Cut it loose instead of stalling.
					delete(h.subs, sub)
					close(sub.out)
					h.logger.Warn("dropped slow subscriber")
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for sub := range h.subs {
				delete(h.subs, sub)
				close(sub.out)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Close stops the Run loop and disconnects every subscriber. Safe to
// call more than once.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Serve registers the connection and blocks until it disconnects or the
// hub closes. Call from the websocket handler.
func (h *Hub) Serve(conn *websocket.Conn) {
	sub := &subscriber{hub: h, conn: conn, out: make(chan []byte, subBuffer)}
	select {
	case h.join <- sub:
	case <-h.done:
		conn.Close()
		return
	}
	sub.serve()
}

// Broadcast queues a payload for every subscriber. If the hub is
// backed up the payload is dropped; the dashboard only ever needs the
// latest state.
func (h *Hub) Broadcast(payload []byte) {
	select {
	case h.cast <- payload:
	default:
		h.logger.Warn("broadcast queue full, dropping payload")
	}
}

// BroadcastJSON encodes v and broadcasts it.
func (h *Hub) BroadcastJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(payload)
	return nil
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
