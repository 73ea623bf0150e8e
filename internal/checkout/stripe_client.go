package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/mmfactory/pizzeria-backend/pkg/stripe"
)

// StripeSessionClient exposes the subset of Stripe operations the checkout
// service needs.
type StripeSessionClient interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeClientWrapper struct {
	api *pkgstripe.Client
}

// NewStripeClient wraps the shared Stripe client so the checkout service
// can be tested against a fake.
func NewStripeClient(api *pkgstripe.Client) StripeSessionClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{api: api}
}

func (w *stripeClientWrapper) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return w.api.CreateCheckoutSession(ctx, params)
}
