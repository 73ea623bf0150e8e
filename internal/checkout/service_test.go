package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/mmfactory/pizzeria-backend/internal/cart"
	"github.com/mmfactory/pizzeria-backend/internal/orders"
	"github.com/mmfactory/pizzeria-backend/internal/pricing"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
	"github.com/mmfactory/pizzeria-backend/pkg/enums"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

type fakeCarts struct {
	items   []cart.Item
	cleared bool
}

func (f *fakeCarts) Get(context.Context, string) (*cart.Cart, error) {
	priced := make([]pricing.PricedItem, 0, len(f.items))
	for _, item := range f.items {
		priced = append(priced, pricing.PricedItem{ItemTotal: item.ItemTotal, Quantity: item.Quantity})
	}
	totals := pricing.CartTotals(priced)
	return &cart.Cart{
		Items:     f.items,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		ItemCount: totals.ItemCount,
	}, nil
}

func (f *fakeCarts) Clear(context.Context, string) error {
	f.cleared = true
	return nil
}

type fakeOrderRepo struct {
	created   []*models.Order
	createErr error
}

func (f *fakeOrderRepo) WithTx(*gorm.DB) orders.Repository { return f }

func (f *fakeOrderRepo) Transact(_ context.Context, fn func(orders.Repository) error) error {
	return fn(f)
}

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order.ID = uuid.New()
	f.created = append(f.created, order)
	return order, nil
}

func (f *fakeOrderRepo) FindByID(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) FindByOrderNumber(context.Context, string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) List(context.Context) ([]models.Order, error) { return nil, nil }

func (f *fakeOrderRepo) ListByStatus(context.Context, enums.OrderStatus) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) error {
	return nil
}

func (f *fakeOrderRepo) Update(context.Context, uuid.UUID, map[string]any) error { return nil }

type fakeNotifier struct {
	mu     sync.Mutex
	kinds  []enums.EventKind
	signal chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{signal: make(chan struct{}, 8)}
}

func (f *fakeNotifier) Dispatch(_ context.Context, kind enums.EventKind, _ *models.Order) {
	f.mu.Lock()
	f.kinds = append(f.kinds, kind)
	f.mu.Unlock()
	f.signal <- struct{}{}
}

func (f *fakeNotifier) waitForDispatches(t *testing.T, n int) []enums.EventKind {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.signal:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d of %d", i+1, n)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]enums.EventKind, len(f.kinds))
	copy(out, f.kinds)
	return out
}

type fakePayments struct {
	lastParams *stripe.CheckoutSessionParams
	err        error
}

func (f *fakePayments) CreateSession(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastParams = params
	return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/cs_test_123"}, nil
}

func margheritaCartItem() cart.Item {
	return cart.Item{
		ID:           uuid.NewString(),
		MenuItemID:   "pizza-1",
		MenuItemName: "Margherita",
		UnitPrice:    decimal.RequireFromString("9.50"),
		Quantity:     2,
		Extras: []cart.ItemExtra{
			{ExtraID: "extra-mozzarella", Name: "Extra Mozzarella", UnitPrice: decimal.RequireFromString("1.50"), Quantity: 1},
		},
		ItemTotal: decimal.RequireFromString("22.00"),
	}
}

func validContact() ContactInput {
	return ContactInput{Name: "Maria Byrne", Phone: "0851234567", Email: "maria@example.com"}
}

func newCheckoutService(t *testing.T, carts *fakeCarts, repo *fakeOrderRepo, notifier *fakeNotifier, payments *fakePayments) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Carts:    carts,
		Repo:     repo,
		Notifier: notifier,
		Payments: payments,
		BaseURL:  "https://pizza.example.com",
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSubmitPickupCreatesPendingOrder(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	repo := &fakeOrderRepo{}
	notifier := newFakeNotifier()
	svc := newCheckoutService(t, carts, repo, notifier, &fakePayments{})

	order, err := svc.SubmitPickup(context.Background(), "cart-1", validContact())
	if err != nil {
		t.Fatalf("submit pickup: %v", err)
	}

	if !strings.HasPrefix(order.OrderNumber, "MM-") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != enums.OrderStatusPending || order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending/pending, got %s/%s", order.Status, order.PaymentStatus)
	}
	if order.Subtotal.StringFixed(2) != "22.00" || order.Tax.StringFixed(2) != "4.62" || order.Total.StringFixed(2) != "26.62" {
		t.Fatalf("unexpected totals %s/%s/%s", order.Subtotal, order.Tax, order.Total)
	}
	if len(order.Items) != 1 || order.Items[0].MenuItemName != "Margherita" {
		t.Fatalf("unexpected snapshot %+v", order.Items)
	}
	if !carts.cleared {
		t.Fatal("expected cart cleared after successful submission")
	}

	kinds := notifier.waitForDispatches(t, 2)
	seen := map[enums.EventKind]bool{}
	for _, kind := range kinds {
		seen[kind] = true
	}
	if !seen[enums.EventOrderPlaced] || !seen[enums.EventAdminNewOrder] {
		t.Fatalf("expected order_placed and admin_new_order dispatches, got %v", kinds)
	}
}

func TestSubmitPickupValidationLeavesCartIntact(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	repo := &fakeOrderRepo{}
	svc := newCheckoutService(t, carts, repo, newFakeNotifier(), &fakePayments{})

	_, err := svc.SubmitPickup(context.Background(), "cart-1", ContactInput{Name: "M", Phone: "bad"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if carts.cleared {
		t.Fatal("cart must not be cleared on validation failure")
	}
	if len(repo.created) != 0 {
		t.Fatal("no order should be created on validation failure")
	}
}

func TestSubmitPickupEmptyCart(t *testing.T) {
	svc := newCheckoutService(t, &fakeCarts{}, &fakeOrderRepo{}, newFakeNotifier(), &fakePayments{})

	_, err := svc.SubmitPickup(context.Background(), "cart-1", validContact())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}

func TestSubmitPickupPersistenceFailureIsRetryable(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	repo := &fakeOrderRepo{createErr: errors.New("db down")}
	svc := newCheckoutService(t, carts, repo, newFakeNotifier(), &fakePayments{})

	_, err := svc.SubmitPickup(context.Background(), "cart-1", validContact())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if carts.cleared {
		t.Fatal("cart must stay intact when persistence fails")
	}
}

func TestStartCardPaymentBuildsSession(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	repo := &fakeOrderRepo{}
	payments := &fakePayments{}
	svc := newCheckoutService(t, carts, repo, newFakeNotifier(), payments)

	redirect, err := svc.StartCardPayment(context.Background(), "cart-1", validContact())
	if err != nil {
		t.Fatalf("start card payment: %v", err)
	}
	if redirect.URL == "" || redirect.SessionID != "cs_test_123" {
		t.Fatalf("unexpected redirect %+v", redirect)
	}

	params := payments.lastParams
	if params == nil {
		t.Fatal("expected session params captured")
	}

	// Margherita line plus the VAT line.
	if len(params.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(params.LineItems))
	}
	if got := *params.LineItems[0].PriceData.UnitAmount; got != 1100 {
		t.Fatalf("expected unit amount 1100 cents, got %d", got)
	}
	if got := *params.LineItems[1].PriceData.UnitAmount; got != 462 {
		t.Fatalf("expected VAT line 462 cents, got %d", got)
	}
	if got := *params.LineItems[1].PriceData.ProductData.Name; got != "VAT (21%)" {
		t.Fatalf("unexpected VAT line name %q", got)
	}
	if !strings.Contains(*params.CancelURL, "cancelled=true") {
		t.Fatalf("cancel url must restore checkout, got %q", *params.CancelURL)
	}

	meta := params.Metadata
	if !strings.HasPrefix(meta["orderNumber"], "MM-") {
		t.Fatalf("unexpected order number metadata %q", meta["orderNumber"])
	}
	if meta["total"] != "26.62" {
		t.Fatalf("unexpected total metadata %q", meta["total"])
	}
	if !strings.Contains(meta["items_0"], "Margherita") {
		t.Fatal("expected serialized line items in metadata")
	}

	// Deferred creation: no order yet, cart untouched.
	if len(repo.created) != 0 {
		t.Fatal("card path must not create an order before payment confirms")
	}
	if carts.cleared {
		t.Fatal("card path must not clear the cart before payment confirms")
	}
}

func TestStartCardPaymentRequiresEmail(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	svc := newCheckoutService(t, carts, &fakeOrderRepo{}, newFakeNotifier(), &fakePayments{})

	contact := validContact()
	contact.Email = ""
	_, err := svc.StartCardPayment(context.Background(), "cart-1", contact)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStartCardPaymentSessionFailurePreservesCart(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	payments := &fakePayments{err: errors.New("stripe down")}
	svc := newCheckoutService(t, carts, &fakeOrderRepo{}, newFakeNotifier(), payments)

	_, err := svc.StartCardPayment(context.Background(), "cart-1", validContact())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if carts.cleared {
		t.Fatal("cart must stay intact when session creation fails")
	}
}

func TestCompleteCardPaymentCreatesPaidOrder(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	repo := &fakeOrderRepo{}
	notifier := newFakeNotifier()
	payments := &fakePayments{}
	svc := newCheckoutService(t, carts, repo, notifier, payments)
	ctx := context.Background()

	if _, err := svc.StartCardPayment(ctx, "cart-1", validContact()); err != nil {
		t.Fatalf("start card payment: %v", err)
	}

	order, err := svc.CompleteCardPayment(ctx, &stripe.CheckoutSession{
		ID:            "cs_test_123",
		Metadata:      payments.lastParams.Metadata,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_test_456"},
	})
	if err != nil {
		t.Fatalf("complete card payment: %v", err)
	}

	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", order.PaymentStatus)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected lifecycle to start at pending, got %s", order.Status)
	}
	if order.PaymentIntentID == nil || *order.PaymentIntentID != "pi_test_456" {
		t.Fatal("expected payment intent reference retained")
	}
	if len(order.Items) != 1 || order.Items[0].ItemTotal.StringFixed(2) != "22.00" {
		t.Fatalf("line items not reconstructed from metadata: %+v", order.Items)
	}
	if order.Total.StringFixed(2) != "26.62" {
		t.Fatalf("unexpected total %s", order.Total.StringFixed(2))
	}

	notifier.waitForDispatches(t, 2)
}

func TestCompleteCardPaymentRejectsMissingMetadata(t *testing.T) {
	svc := newCheckoutService(t, &fakeCarts{}, &fakeOrderRepo{}, newFakeNotifier(), &fakePayments{})

	_, err := svc.CompleteCardPayment(context.Background(), &stripe.CheckoutSession{ID: "cs_x"})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitPickupStampsEstimatedPickupTime(t *testing.T) {
	carts := &fakeCarts{items: []cart.Item{margheritaCartItem()}}
	svc := newCheckoutService(t, carts, &fakeOrderRepo{}, newFakeNotifier(), &fakePayments{})

	before := time.Now()
	order, err := svc.SubmitPickup(context.Background(), "cart-1", validContact())
	if err != nil {
		t.Fatalf("submit pickup: %v", err)
	}

	if order.EstimatedPickupTime == nil {
		t.Fatal("expected an estimated pickup time on pickup orders")
	}
	lead := order.EstimatedPickupTime.Sub(before)
	if lead < 19*time.Minute || lead > 21*time.Minute {
		t.Fatalf("expected roughly the default lead time, got %s", lead)
	}
}

func bigCart(lines int) []cart.Item {
	items := make([]cart.Item, 0, lines)
	for i := 0; i < lines; i++ {
		item := margheritaCartItem()
		item.SpecialInstructions = strings.Repeat("no basil please, ", 10)
		items = append(items, item)
	}
	return items
}

func TestStartCardPaymentChunksLargeCarts(t *testing.T) {
	carts := &fakeCarts{items: bigCart(8)}
	payments := &fakePayments{}
	svc := newCheckoutService(t, carts, &fakeOrderRepo{}, newFakeNotifier(), payments)
	ctx := context.Background()

	if _, err := svc.StartCardPayment(ctx, "cart-1", validContact()); err != nil {
		t.Fatalf("start card payment: %v", err)
	}

	meta := payments.lastParams.Metadata
	if meta["items_1"] == "" {
		t.Fatal("expected the snapshot to span multiple metadata chunks")
	}
	for key, value := range meta {
		if len(value) > 500 {
			t.Fatalf("metadata %q exceeds the 500 character cap (%d)", key, len(value))
		}
	}

	// The webhook side must reassemble the chunks into the same lines.
	order, err := svc.CompleteCardPayment(ctx, &stripe.CheckoutSession{
		ID:            "cs_test_123",
		Metadata:      meta,
		PaymentIntent: &stripe.PaymentIntent{ID: "pi_test_456"},
	})
	if err != nil {
		t.Fatalf("complete card payment: %v", err)
	}
	if len(order.Items) != 8 {
		t.Fatalf("expected 8 reconstructed lines, got %d", len(order.Items))
	}
	if !strings.Contains(order.Items[3].SpecialInstructions, "no basil") {
		t.Fatal("special instructions lost across chunk boundaries")
	}
}

func TestStartCardPaymentRejectsOversizedCart(t *testing.T) {
	items := bigCart(1)
	items[0].SpecialInstructions = strings.Repeat("x", 21000)
	carts := &fakeCarts{items: items}
	payments := &fakePayments{}
	svc := newCheckoutService(t, carts, &fakeOrderRepo{}, newFakeNotifier(), payments)

	_, err := svc.StartCardPayment(context.Background(), "cart-1", validContact())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized cart, got %v", err)
	}
	if payments.lastParams != nil {
		t.Fatal("oversized cart must be rejected before any session call")
	}
}
