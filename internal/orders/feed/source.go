package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/pkg/config"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
)

const (
	notifyChannel = "orders_changed"
	pingInterval  = 90 * time.Second

	defaultResyncMinWait = time.Second
	defaultResyncMaxWait = 30 * time.Second
)

// Source produces a lazy, infinite, restartable sequence of order change
// events. Run blocks until ctx is cancelled; Events stays open for the
// lifetime of the source.
type Source interface {
	Run(ctx context.Context) error
	Events() <-chan Event
}

// notifyPayload mirrors the json built by the orders table trigger.
type notifyPayload struct {
	Op string    `json:"op"`
	ID uuid.UUID `json:"id"`
}

// notifyListener is the slice of pq.Listener the pump consumes, split out
// so the pump can run against a fake without a postgres server.
type notifyListener interface {
	notifications() <-chan *pq.Notification
	ping() error
	close() error
}

type pqListener struct {
	inner *pq.Listener
}

func (l pqListener) notifications() <-chan *pq.Notification { return l.inner.Notify }
func (l pqListener) ping() error                            { return l.inner.Ping() }
func (l pqListener) close() error                           { return l.inner.Close() }

type pgSource struct {
	listener notifyListener
	repo     orders.Repository
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
	events   chan Event

	resyncMinWait time.Duration
	resyncMaxWait time.Duration
}

// NewPostgresSource listens on the orders notify channel. The underlying
// listener reconnects on its own with exponential backoff between the
// configured bounds; every reconnect triggers a full resync because
// notifications may have been missed while disconnected.
func NewPostgresSource(dsn string, cfg config.FeedConfig, repo orders.Repository, logg *logger.Logger, m *metrics.OrderMetrics) (Source, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}

	src := &pgSource{
		repo:          repo,
		logg:          logg,
		metrics:       m,
		events:        make(chan Event, 64),
		resyncMinWait: defaultResyncMinWait,
		resyncMaxWait: defaultResyncMaxWait,
	}

	pqlst := pq.NewListener(dsn, cfg.MinReconnect, cfg.MaxReconnect, func(event pq.ListenerEventType, err error) {
		if event == pq.ListenerEventReconnected {
			m.IncFeedReconnect()
		}
		if err != nil && logg != nil {
			logg.Warn(context.Background(), fmt.Sprintf("orders feed listener event %d: %v", event, err))
		}
	})

	if err := pqlst.Listen(notifyChannel); err != nil {
		_ = pqlst.Close()
		return nil, fmt.Errorf("listen %s: %w", notifyChannel, err)
	}

	src.listener = pqListener{inner: pqlst}
	return src, nil
}

func (s *pgSource) Events() <-chan Event {
	return s.events
}

// Run pumps notifications into the event channel until ctx is cancelled.
// A nil notification from the listener signals a reconnect, which is
// answered with a full resync.
func (s *pgSource) Run(ctx context.Context) error {
	defer func() { _ = s.listener.close() }()

	// Initial snapshot so a consumer starting mid-stream sees every order.
	if err := s.resyncWithRetry(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case notification := <-s.listener.notifications():
			if notification == nil {
				// Connection was re-established; anything sent while we
				// were away is gone.
				if err := s.resyncWithRetry(ctx); err != nil {
					return err
				}
				continue
			}
			s.handle(ctx, notification.Extra)

		case <-time.After(pingInterval):
			go func() { _ = s.listener.ping() }()
		}
	}
}

func (s *pgSource) handle(ctx context.Context, raw string) {
	var payload notifyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orders feed: undecodable notification: %v", err))
		}
		return
	}

	op, err := enums.ParseFeedOp(payload.Op)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orders feed: %v", err))
		}
		return
	}

	event := Event{Op: op, OrderID: payload.ID}
	if op != enums.FeedOpDelete {
		order, err := s.repo.FindByID(ctx, payload.ID)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("orders feed: load order %s: %v", payload.ID, err))
			}
			return
		}
		event.Order = order
	}

	s.emit(ctx, event)
}

// resyncWithRetry keeps retrying until the database answers or ctx is
// cancelled. The outage that forced a reconnect usually also fails the
// first resync attempt, so giving up here would kill the feed for good
// while the rest of the process keeps serving.
func (s *pgSource) resyncWithRetry(ctx context.Context) error {
	wait := s.resyncMinWait
	if wait <= 0 {
		wait = defaultResyncMinWait
	}
	for {
		err := s.resync(ctx)
		if err == nil {
			return nil
		}
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orders feed: %v, retrying in %s", err, wait))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if max := s.resyncMaxWait; max > 0 && wait > max {
			wait = max
		}
	}
}

// resync replays the whole table as update events. The consumer's fold is
// idempotent on order id, so replaying already-seen orders is harmless.
func (s *pgSource) resync(ctx context.Context) error {
	all, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("resync orders: %w", err)
	}
	for i := range all {
		order := all[i]
		s.emit(ctx, Event{Op: enums.FeedOpUpdate, OrderID: order.ID, Order: &order})
	}
	return nil
}

func (s *pgSource) emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}
