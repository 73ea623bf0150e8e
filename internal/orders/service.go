package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
)

// Notifier fans an order event out to email. Implementations log and
// swallow failures; dispatch never affects the order operation itself.
type Notifier interface {
	Dispatch(ctx context.Context, kind enums.EventKind, order *models.Order)
}

// Service defines admin-side order operations beyond repository reads.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, status *enums.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	UpdatePickupTime(ctx context.Context, id uuid.UUID, pickupTime time.Time) (*models.Order, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*models.Order, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.OrderMetrics
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, notifier Notifier, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, notifier: notifier, metrics: m}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOrDependency(err)
	}
	return order, nil
}

func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, notFoundOrDependency(err)
	}
	return order, nil
}

func (s *service) List(ctx context.Context, status *enums.OrderStatus) ([]models.Order, error) {
	if status != nil {
		return s.repo.ListByStatus(ctx, *status)
	}
	return s.repo.List(ctx)
}

// UpdateStatus applies one lifecycle transition. Check and write happen in
// one transaction so the transition is validated against the current row;
// there is no version token, so between admins the last legal forward move
// wins (last write wins).
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", target))
	}

	var order *models.Order
	err := s.repo.Transact(ctx, func(repo Repository) error {
		var err error
		order, err = repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOrDependency(err)
		}

		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, target),
			)
		}

		if err := repo.UpdateStatus(ctx, id, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	previous := order.Status

	order.Status = target
	order.UpdatedAt = time.Now().UTC()
	s.metrics.IncStatusTransition(previous.String(), target.String())

	// The status is durable at this point; email is best effort.
	go s.notifier.Dispatch(context.WithoutCancel(ctx), enums.EventStatusUpdate, order)

	return order, nil
}

// UpdatePickupTime sets the estimated pickup time. Only orders still in an
// active state can be edited.
func (s *service) UpdatePickupTime(ctx context.Context, id uuid.UUID, pickupTime time.Time) (*models.Order, error) {
	return s.updateEditable(ctx, id, map[string]any{"estimated_pickup_time": pickupTime}, func(order *models.Order) {
		t := pickupTime
		order.EstimatedPickupTime = &t
	})
}

// UpdateNotes replaces the internal admin notes on an active order.
func (s *service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*models.Order, error) {
	return s.updateEditable(ctx, id, map[string]any{"notes": notes}, func(order *models.Order) {
		n := notes
		order.Notes = &n
	})
}

func (s *service) updateEditable(ctx context.Context, id uuid.UUID, updates map[string]any, apply func(*models.Order)) (*models.Order, error) {
	var order *models.Order
	err := s.repo.Transact(ctx, func(repo Repository) error {
		var err error
		order, err = repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOrDependency(err)
		}

		if order.Status.IsTerminal() {
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				fmt.Sprintf("order in %s state can no longer be edited", order.Status),
			)
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	apply(order)
	order.UpdatedAt = time.Now().UTC()
	return order, nil
}

func notFoundOrDependency(err error) error {
	if isRecordNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
}
