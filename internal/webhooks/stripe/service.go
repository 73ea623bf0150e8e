package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
)

type checkoutCompleter interface {
	CompleteCardPayment(ctx context.Context, session *stripe.CheckoutSession) (*models.Order, error)
}

type ServiceParams struct {
	Checkout checkoutCompleter
	Logger   *logger.Logger
}

// Service turns verified payment events into durable orders. Card orders are
// only created here, once the hosted session reports success.
type Service struct {
	checkout checkoutCompleter
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service required")
	}
	return &Service{
		checkout: params.Checkout,
		logg:     params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}

		order, err := s.checkout.CompleteCardPayment(ctx, &session)
		if err != nil {
			return err
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "card order created from payment event")
		}
		return nil
	default:
		// Unhandled event types are acknowledged so the sender stops retrying.
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "event_type", string(event.Type)), "ignoring stripe event")
		}
		return nil
	}
}
