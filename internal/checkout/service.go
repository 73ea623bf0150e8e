package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/mmfactory/pizzeria-backend/internal/cart"
	"github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
	"github.com/mmfactory/pizzeria-backend/pkg/logger"
	"github.com/mmfactory/pizzeria-backend/pkg/metrics"
)

const sessionCurrency = "eur"

// defaultPickupLeadTime is the estimate stamped on pay-at-pickup orders
// when no lead time is configured.
const defaultPickupLeadTime = 20 * time.Minute

// Metadata keys carried on the Stripe session so the webhook can rebuild
// the order without any server-side session state.
const (
	metaOrderNumber   = "orderNumber"
	metaCustomerName  = "customerName"
	metaCustomerPhone = "customerPhone"
	metaCustomerEmail = "customerEmail"
	metaNotes         = "notes"
	metaSubtotal      = "subtotal"
	metaTax           = "tax"
	metaTotal         = "total"
	metaItemsPrefix   = "items_"
)

// Stripe caps each metadata value at 500 characters and a session at 50
// keys, so the serialized line items are spread over numbered chunks.
// Eight keys carry the contact and totals; the rest are left to items.
const (
	metaValueLimit = 500
	maxItemsChunks = 40
)

// PaymentRedirect is handed back to the shopper for the card path.
type PaymentRedirect struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PickupResult carries what the confirmation view needs after a
// pay-at-pickup submission.
type PickupResult struct {
	Order *models.Order
}

// CartAccess is the slice of the cart service the checkout flow needs.
type CartAccess interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// Service drives both submission paths.
type Service interface {
	SubmitPickup(ctx context.Context, cartID string, contact ContactInput) (*models.Order, error)
	StartCardPayment(ctx context.Context, cartID string, contact ContactInput) (*PaymentRedirect, error)
	CompleteCardPayment(ctx context.Context, session *stripe.CheckoutSession) (*models.Order, error)
}

type service struct {
	carts    CartAccess
	repo     orders.Repository
	notifier orders.Notifier
	payments StripeSessionClient
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	baseURL  string
	leadTime time.Duration
	now      func() time.Time
}

// ServiceParams wires the checkout service dependencies.
type ServiceParams struct {
	Carts    CartAccess
	Repo     orders.Repository
	Notifier orders.Notifier
	Payments StripeSessionClient
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	BaseURL  string
	LeadTime time.Duration
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if params.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	leadTime := params.LeadTime
	if leadTime <= 0 {
		leadTime = defaultPickupLeadTime
	}
	return &service{
		carts:    params.Carts,
		repo:     params.Repo,
		notifier: params.Notifier,
		payments: params.Payments,
		metrics:  params.Metrics,
		logg:     params.Logger,
		baseURL:  params.BaseURL,
		leadTime: leadTime,
		now:      time.Now,
	}, nil
}

// SubmitPickup persists a pending pay-at-pickup order from the current
// cart. The cart is cleared only after the order is durably written;
// notification failures never surface to the shopper.
func (s *service) SubmitPickup(ctx context.Context, cartID string, contact ContactInput) (*models.Order, error) {
	contact, err := ValidateContact(contact, false)
	if err != nil {
		return nil, err
	}

	current, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := snapshotItems(current.Items)
	totals := snapshotTotals(items)

	pickupAt := s.now().Add(s.leadTime)
	order := &models.Order{
		OrderNumber:   PickupOrderNumber(s.now()),
		CustomerName:  contact.Name,
		CustomerPhone: contact.Phone,
		CustomerEmail: optional(contact.Email),
		Items:         items,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		Notes:         optional(contact.Notes),

		EstimatedPickupTime: &pickupAt,
	}

	// Persistence failure leaves the cart intact so submission stays
	// retryable.
	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncOrderPlaced("pickup")
	s.dispatchPlaced(ctx, created)

	if err := s.carts.Clear(ctx, cartID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithOrderNumber(ctx, created.OrderNumber), "failed to clear cart after order submission")
	}

	return created, nil
}

// StartCardPayment opens a hosted payment session for the current cart. No
// order exists until the payment-confirmation webhook fires, and the cart
// is left untouched so an abandoned payment costs the shopper nothing.
func (s *service) StartCardPayment(ctx context.Context, cartID string, contact ContactInput) (*PaymentRedirect, error) {
	contact, err := ValidateContact(contact, true)
	if err != nil {
		return nil, err
	}

	current, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := snapshotItems(current.Items)
	totals := snapshotTotals(items)
	orderNumber := CardOrderNumber(s.now())

	serialized, err := json.Marshal(items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize line items")
	}
	itemChunks, err := chunkItemsMetadata(string(serialized))
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          sessionLineItems(items, totals.Tax),
		SuccessURL:         stripe.String(s.baseURL + "/order-confirmation?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(s.baseURL + "/checkout?cancelled=true"),
		CustomerEmail:      stripe.String(contact.Email),
	}
	params.AddMetadata(metaOrderNumber, orderNumber)
	params.AddMetadata(metaCustomerName, contact.Name)
	params.AddMetadata(metaCustomerPhone, contact.Phone)
	params.AddMetadata(metaCustomerEmail, contact.Email)
	params.AddMetadata(metaNotes, contact.Notes)
	params.AddMetadata(metaSubtotal, totals.Subtotal.StringFixed(2))
	params.AddMetadata(metaTax, totals.Tax.StringFixed(2))
	params.AddMetadata(metaTotal, totals.Total.StringFixed(2))
	for i, chunk := range itemChunks {
		params.AddMetadata(fmt.Sprintf("%s%d", metaItemsPrefix, i), chunk)
	}

	session, err := s.payments.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment session")
	}

	return &PaymentRedirect{SessionID: session.ID, URL: session.URL}, nil
}

// CompleteCardPayment is invoked from the payment webhook once the hosted
// session finishes. It performs the deferred order creation with payment
// already captured.
func (s *service) CompleteCardPayment(ctx context.Context, session *stripe.CheckoutSession) (*models.Order, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session required")
	}

	meta := session.Metadata
	if meta == nil || meta[metaOrderNumber] == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata missing order number")
	}

	var items []models.OrderItem
	if err := json.Unmarshal([]byte(joinItemsMetadata(meta)), &items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode line items metadata")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session metadata has no line items")
	}

	subtotal, err := decimal.NewFromString(meta[metaSubtotal])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subtotal metadata")
	}
	tax, err := decimal.NewFromString(meta[metaTax])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode tax metadata")
	}
	total, err := decimal.NewFromString(meta[metaTotal])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode total metadata")
	}

	var paymentIntentID *string
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		id := session.PaymentIntent.ID
		paymentIntentID = &id
	}

	order := &models.Order{
		OrderNumber:     meta[metaOrderNumber],
		CustomerName:    meta[metaCustomerName],
		CustomerPhone:   meta[metaCustomerPhone],
		CustomerEmail:   optional(meta[metaCustomerEmail]),
		Items:           items,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPaid,
		PaymentIntentID: paymentIntentID,
		Notes:           optional(meta[metaNotes]),
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncOrderPlaced("card")
	s.dispatchPlaced(ctx, created)

	return created, nil
}

func (s *service) dispatchPlaced(ctx context.Context, order *models.Order) {
	detached := context.WithoutCancel(ctx)
	go s.notifier.Dispatch(detached, enums.EventOrderPlaced, order)
	go s.notifier.Dispatch(detached, enums.EventAdminNewOrder, order)
}

// chunkItemsMetadata splits the serialized snapshot into metadata-sized
// pieces. A cart that cannot fit is rejected before any Stripe call, so
// the shopper gets a clear error instead of a session-creation failure.
func chunkItemsMetadata(serialized string) ([]string, error) {
	if len(serialized) > metaValueLimit*maxItemsChunks {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is too large for card payment, choose pay at pickup")
	}
	chunks := make([]string, 0, len(serialized)/metaValueLimit+1)
	for start := 0; start < len(serialized); {
		end := start + metaValueLimit
		if end >= len(serialized) {
			end = len(serialized)
		} else {
			// Never split a rune across two metadata values.
			for end > start && !utf8.RuneStart(serialized[end]) {
				end--
			}
		}
		chunks = append(chunks, serialized[start:end])
		start = end
	}
	return chunks, nil
}

// joinItemsMetadata reassembles the numbered chunks in order, stopping at
// the first gap.
func joinItemsMetadata(meta map[string]string) string {
	var b strings.Builder
	for i := 0; ; i++ {
		chunk, ok := meta[fmt.Sprintf("%s%d", metaItemsPrefix, i)]
		if !ok {
			break
		}
		b.WriteString(chunk)
	}
	return b.String()
}

// sessionLineItems converts frozen order lines into hosted-checkout line
// items priced in minor units, with VAT appended as its own line.
func sessionLineItems(items []models.OrderItem, tax decimal.Decimal) []*stripe.CheckoutSessionLineItemParams {
	out := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items)+1)
	for _, item := range items {
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(sessionCurrency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.MenuItemName),
					Description: lineDescription(item),
				},
				UnitAmount: stripe.Int64(unitAmountMinor(item)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}
	if tax.IsPositive() {
		out = append(out, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(sessionCurrency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("VAT (21%)"),
				},
				UnitAmount: stripe.Int64(tax.Shift(2).Round(0).IntPart()),
			},
			Quantity: stripe.Int64(1),
		})
	}
	return out
}

// unitAmountMinor derives the per-unit price in cents from the rounded
// line total, so extras are folded into the displayed unit price.
func unitAmountMinor(item models.OrderItem) int64 {
	qty := int64(item.Quantity)
	if qty <= 0 {
		qty = 1
	}
	return item.ItemTotal.Shift(2).Div(decimal.NewFromInt(qty)).Round(0).IntPart()
}

func lineDescription(item models.OrderItem) *string {
	description := ""
	if len(item.Extras) > 0 {
		parts := make([]string, 0, len(item.Extras))
		for _, extra := range item.Extras {
			part := extra.ExtraName
			if extra.Quantity > 1 {
				part = fmt.Sprintf("%s x%d", extra.ExtraName, extra.Quantity)
			}
			parts = append(parts, part)
		}
		description = "Extras: " + strings.Join(parts, ", ")
	}
	if item.SpecialInstructions != "" {
		if description != "" {
			description += " | Note: " + item.SpecialInstructions
		} else {
			description = "Note: " + item.SpecialInstructions
		}
	}
	if description == "" {
		return nil
	}
	return stripe.String(description)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
