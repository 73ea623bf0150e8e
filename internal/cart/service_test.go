package cart

import (
	"context"
	"testing"

	"github.com/mmfactory/pizzeria-backend/internal/menu"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

type memoryStore struct {
	carts map[string][]Item
}

func newMemoryStore() *memoryStore {
	return &memoryStore{carts: make(map[string][]Item)}
}

func (m *memoryStore) Load(_ context.Context, cartID string) ([]Item, error) {
	items := m.carts[cartID]
	out := make([]Item, len(items))
	copy(out, items)
	return out, nil
}

func (m *memoryStore) Save(_ context.Context, cartID string, items []Item) error {
	saved := make([]Item, len(items))
	copy(saved, items)
	m.carts[cartID] = saved
	return nil
}

func (m *memoryStore) Delete(_ context.Context, cartID string) error {
	delete(m.carts, cartID)
	return nil
}

func newTestService(t *testing.T) (Service, *memoryStore) {
	t.Helper()
	store := newMemoryStore()
	svc, err := NewService(store, menu.NewService())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, store
}

func TestAddItemComputesTotalAndOpensReview(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{
		MenuItemID: "pizza-1",
		Quantity:   2,
		Extras:     []ExtraSelection{{ExtraID: "extra-mozzarella", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if got := cart.Items[0].ItemTotal.StringFixed(2); got != "22.00" {
		t.Fatalf("expected item total 22.00, got %s", got)
	}
	if got := cart.Tax.StringFixed(2); got != "4.62" {
		t.Fatalf("expected tax 4.62, got %s", got)
	}
	if got := cart.Total.StringFixed(2); got != "26.62" {
		t.Fatalf("expected total 26.62, got %s", got)
	}
	if !cart.ReviewOpen {
		t.Fatal("expected review panel to open after add")
	}
}

func TestAddItemAlwaysAppends(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	input := AddItemInput{MenuItemID: "pizza-1", Quantity: 1}
	if _, err := svc.AddItem(ctx, "cart-1", input); err != nil {
		t.Fatalf("first add: %v", err)
	}
	cart, err := svc.AddItem(ctx, "cart-1", input)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected identical selections to stay separate lines, got %d", len(cart.Items))
	}
	if cart.Items[0].ID == cart.Items[1].ID {
		t.Fatal("expected distinct line identifiers")
	}
}

func TestAddThenRemoveRestoresItemsButNotReviewFlag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "calzone-32", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, err = svc.RemoveItem(ctx, "cart-1", cart.Items[0].ID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
	if !cart.ReviewOpen {
		t.Fatal("expected review panel to stay open after remove")
	}
}

func TestRemoveAbsentItemIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	cart, err := svc.RemoveItem(ctx, "cart-1", "no-such-line")
	if err != nil {
		t.Fatalf("remove absent item: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected cart untouched, got %d items", len(cart.Items))
	}
}

func TestUpdateItemQuantityZeroRemoves(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, err = svc.UpdateItemQuantity(ctx, "cart-1", cart.Items[0].ID, 0)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected quantity 0 to remove the line, got %d items", len(cart.Items))
	}
}

func TestUpdateItemQuantityRecomputesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, err = svc.UpdateItemQuantity(ctx, "cart-1", cart.Items[0].ID, 3)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if got := cart.Items[0].ItemTotal.StringFixed(2); got != "28.50" {
		t.Fatalf("expected 28.50, got %s", got)
	}
}

func TestUpdateItemExtrasRecomputesTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 2})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	cart, err = svc.UpdateItemExtras(ctx, "cart-1", cart.Items[0].ID, []ExtraSelection{
		{ExtraID: "extra-mozzarella", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("update extras: %v", err)
	}
	if got := cart.Items[0].ItemTotal.StringFixed(2); got != "22.00" {
		t.Fatalf("expected 22.00, got %s", got)
	}
}

func TestUpdateSpecialInstructionsKeepsTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	before := cart.Items[0].ItemTotal
	cart, err = svc.UpdateSpecialInstructions(ctx, "cart-1", cart.Items[0].ID, "well done")
	if err != nil {
		t.Fatalf("update instructions: %v", err)
	}
	if cart.Items[0].SpecialInstructions != "well done" {
		t.Fatalf("instructions not stored: %q", cart.Items[0].SpecialInstructions)
	}
	if !cart.Items[0].ItemTotal.Equal(before) {
		t.Fatal("expected item total unchanged")
	}
}

func TestAddItemUnknownMenuItem(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddItem(context.Background(), "cart-1", AddItemInput{MenuItemID: "pizza-404", Quantity: 1})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "cart-1", AddItemInput{MenuItemID: "pizza-1", Quantity: 1}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := svc.Clear(ctx, "cart-1"); err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	if _, ok := store.carts["cart-1"]; ok {
		t.Fatal("expected cart key removed from store")
	}

	cart, err := svc.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(cart.Items))
	}
}
