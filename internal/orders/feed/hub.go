package feed

import (
	"context"
	"sync"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
)

// Hub consumes a Source, keeps the folded collection current and fans
// events out to any number of live subscribers (the admin SSE streams).
// Slow subscribers drop events rather than stalling the feed; their next
// snapshot read catches them up.
type Hub struct {
	source     Source
	collection *Collection

	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// NewHub wires a hub over a source.
func NewHub(source Source) *Hub {
	return &Hub{
		source:      source,
		collection:  NewCollection(),
		subscribers: make(map[chan Event]struct{}),
	}
}

// Run drives the source and distributes its events until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- h.source.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-done
		case err := <-done:
			return err
		case event := <-h.source.Events():
			h.collection.Apply(event)
			h.broadcast(event)
		}
	}
}

// Subscribe registers a live event stream. The returned cancel func must
// be called when the consumer goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subscribers, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Snapshot exposes the current folded order set, newest first.
func (h *Hub) Snapshot() []models.Order {
	return h.collection.Snapshot()
}

func (h *Hub) broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
