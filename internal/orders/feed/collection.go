package feed

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

// Collection folds change events into an in-memory order set, keyed by
// order id. Applying the same event twice leaves the collection unchanged.
type Collection struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]models.Order
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{orders: make(map[uuid.UUID]models.Order)}
}

// Apply merges one event by identifier. Inserts and updates both upsert;
// deletes remove.
func (c *Collection) Apply(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if event.Op == enums.FeedOpDelete {
		delete(c.orders, event.OrderID)
		return
	}
	if event.Order == nil {
		return
	}
	c.orders[event.Order.ID] = *event.Order
}

// Snapshot returns the current orders, newest first.
func (c *Collection) Snapshot() []models.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Order, 0, len(c.orders))
	for _, order := range c.orders {
		out = append(out, order)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len reports the number of orders currently held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders)
}
