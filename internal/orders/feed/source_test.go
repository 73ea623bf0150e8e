package feed

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
)

type fakeListener struct {
	notify chan *pq.Notification

	mu     sync.Mutex
	closed bool
}

func newFakeListener() *fakeListener {
	return &fakeListener{notify: make(chan *pq.Notification, 4)}
}

func (f *fakeListener) notifications() <-chan *pq.Notification { return f.notify }
func (f *fakeListener) ping() error                            { return nil }

func (f *fakeListener) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeSourceRepo struct {
	mu        sync.Mutex
	orders    []models.Order
	listFails int
	listCalls int
}

func (f *fakeSourceRepo) List(context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listFails > 0 {
		f.listFails--
		return nil, errors.New("database unavailable")
	}
	out := make([]models.Order, len(f.orders))
	copy(out, f.orders)
	return out, nil
}

func (f *fakeSourceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			copied := f.orders[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSourceRepo) WithTx(*gorm.DB) orders.Repository { return f }

func (f *fakeSourceRepo) Transact(_ context.Context, fn func(orders.Repository) error) error {
	return fn(f)
}

func (f *fakeSourceRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (f *fakeSourceRepo) FindByOrderNumber(context.Context, string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSourceRepo) ListByStatus(context.Context, enums.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeSourceRepo) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) error {
	return nil
}

func (f *fakeSourceRepo) Update(context.Context, uuid.UUID, map[string]any) error { return nil }

func newTestSource(listener *fakeListener, repo *fakeSourceRepo) *pgSource {
	return &pgSource{
		listener:      listener,
		repo:          repo,
		events:        make(chan Event, 16),
		resyncMinWait: time.Millisecond,
		resyncMaxWait: 5 * time.Millisecond,
	}
}

func waitForSourceEvent(t *testing.T, src *pgSource) Event {
	t.Helper()
	select {
	case event := <-src.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return Event{}
	}
}

func TestSourceSurvivesFailedResync(t *testing.T) {
	order := models.Order{ID: uuid.New(), OrderNumber: "MM-FEED-1", Status: enums.OrderStatusPending}
	repo := &fakeSourceRepo{orders: []models.Order{order}, listFails: 2}
	src := newTestSource(newFakeListener(), repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	// The first two snapshot attempts fail; the pump must retry instead
	// of giving up.
	event := waitForSourceEvent(t, src)
	if event.OrderID != order.ID {
		t.Fatalf("unexpected event %+v", event)
	}

	repo.mu.Lock()
	calls := repo.listCalls
	repo.mu.Unlock()
	if calls < 3 {
		t.Fatalf("expected at least 3 snapshot attempts, got %d", calls)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop after cancellation")
	}
}

func TestSourceResyncsAfterReconnect(t *testing.T) {
	order := models.Order{ID: uuid.New(), OrderNumber: "MM-FEED-2", Status: enums.OrderStatusPending}
	repo := &fakeSourceRepo{orders: []models.Order{order}}
	listener := newFakeListener()
	src := newTestSource(listener, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	waitForSourceEvent(t, src) // initial snapshot

	// lib/pq delivers nil after the connection is re-established.
	listener.notify <- nil

	event := waitForSourceEvent(t, src)
	if event.OrderID != order.ID || event.Op != enums.FeedOpUpdate {
		t.Fatalf("expected replayed order after reconnect, got %+v", event)
	}
}

func TestSourceEmitsNotifiedOrder(t *testing.T) {
	order := models.Order{ID: uuid.New(), OrderNumber: "MM-FEED-3", Status: enums.OrderStatusConfirmed}
	repo := &fakeSourceRepo{orders: []models.Order{order}}
	listener := newFakeListener()
	src := newTestSource(listener, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	waitForSourceEvent(t, src) // initial snapshot

	payload, err := json.Marshal(notifyPayload{Op: "update", ID: order.ID})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	listener.notify <- &pq.Notification{Channel: notifyChannel, Extra: string(payload)}

	event := waitForSourceEvent(t, src)
	if event.Op != enums.FeedOpUpdate || event.Order == nil || event.Order.OrderNumber != "MM-FEED-3" {
		t.Fatalf("unexpected event %+v", event)
	}
}
