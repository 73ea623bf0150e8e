package feed

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

func feedOrder(number string, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:          uuid.New(),
		OrderNumber: number,
		Status:      enums.OrderStatusPending,
		CreatedAt:   createdAt,
	}
}

func TestCollectionInsertUpdateDelete(t *testing.T) {
	c := NewCollection()
	order := feedOrder("MM-1", time.Now())

	c.Apply(Event{Op: enums.FeedOpInsert, OrderID: order.ID, Order: order})
	if c.Len() != 1 {
		t.Fatalf("expected 1 order after insert, got %d", c.Len())
	}

	updated := *order
	updated.Status = enums.OrderStatusConfirmed
	c.Apply(Event{Op: enums.FeedOpUpdate, OrderID: order.ID, Order: &updated})
	if c.Len() != 1 {
		t.Fatalf("expected update to merge by id, got %d orders", c.Len())
	}
	if got := c.Snapshot()[0].Status; got != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed after update, got %s", got)
	}

	c.Apply(Event{Op: enums.FeedOpDelete, OrderID: order.ID})
	if c.Len() != 0 {
		t.Fatalf("expected empty collection after delete, got %d", c.Len())
	}
}

func TestCollectionApplyIsIdempotent(t *testing.T) {
	c := NewCollection()
	order := feedOrder("MM-1", time.Now())
	event := Event{Op: enums.FeedOpInsert, OrderID: order.ID, Order: order}

	c.Apply(event)
	c.Apply(event)
	c.Apply(event)

	if c.Len() != 1 {
		t.Fatalf("expected replayed event to be a no-op, got %d orders", c.Len())
	}
}

func TestCollectionDeleteUnknownIsNoOp(t *testing.T) {
	c := NewCollection()
	c.Apply(Event{Op: enums.FeedOpDelete, OrderID: uuid.New()})
	if c.Len() != 0 {
		t.Fatalf("expected no-op delete, got %d orders", c.Len())
	}
}

func TestSnapshotNewestFirst(t *testing.T) {
	c := NewCollection()
	older := feedOrder("MM-OLD", time.Now().Add(-time.Hour))
	newer := feedOrder("MM-NEW", time.Now())

	c.Apply(Event{Op: enums.FeedOpInsert, OrderID: older.ID, Order: older})
	c.Apply(Event{Op: enums.FeedOpInsert, OrderID: newer.ID, Order: newer})

	snapshot := c.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(snapshot))
	}
	if snapshot[0].OrderNumber != "MM-NEW" {
		t.Fatalf("expected newest first, got %s", snapshot[0].OrderNumber)
	}
}
