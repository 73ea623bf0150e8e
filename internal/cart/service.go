package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/internal/menu"
	"github.com/mmfactory/pizzeria-backend/internal/pricing"
	pkgerrors "github.com/mmfactory/pizzeria-backend/pkg/errors"
)

// ExtraSelection references a catalog extra plus a chosen quantity.
type ExtraSelection struct {
	ExtraID  string `json:"extra_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

// AddItemInput carries everything needed to append one cart line.
type AddItemInput struct {
	MenuItemID          string           `json:"menu_item_id" validate:"required"`
	Quantity            int              `json:"quantity" validate:"min=1"`
	Extras              []ExtraSelection `json:"extras" validate:"dive"`
	SpecialInstructions string           `json:"special_instructions"`
}

// Service owns cart mutations. Every mutation persists the item collection
// through the Store; the review-panel flag lives only in process memory.
type Service interface {
	Get(ctx context.Context, cartID string) (*Cart, error)
	AddItem(ctx context.Context, cartID string, input AddItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (*Cart, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Cart, error)
	UpdateItemExtras(ctx context.Context, cartID, itemID string, extras []ExtraSelection) (*Cart, error)
	UpdateSpecialInstructions(ctx context.Context, cartID, itemID, text string) (*Cart, error)
	SetReviewOpen(cartID string, open bool)
	Clear(ctx context.Context, cartID string) error
}

type service struct {
	store   Store
	catalog menu.Service

	mu         sync.Mutex
	reviewOpen map[string]bool
}

// NewService builds the cart service over a persistence store and the catalog.
func NewService(store Store, catalog menu.Service) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("menu catalog required")
	}
	return &service{
		store:      store,
		catalog:    catalog,
		reviewOpen: make(map[string]bool),
	}, nil
}

func (s *service) Get(ctx context.Context, cartID string) (*Cart, error) {
	items, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return derive(items, s.isReviewOpen(cartID)), nil
}

func (s *service) AddItem(ctx context.Context, cartID string, input AddItemInput) (*Cart, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	menuItem, err := s.catalog.FindItem(input.MenuItemID)
	if err != nil {
		return nil, err
	}
	extras, err := s.resolveExtras(input.Extras)
	if err != nil {
		return nil, err
	}

	items, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	item := Item{
		ID:                  uuid.NewString(),
		MenuItemID:          menuItem.ID,
		MenuItemName:        menuItem.Name,
		UnitPrice:           menuItem.Price,
		Quantity:            input.Quantity,
		Extras:              extras,
		SpecialInstructions: input.SpecialInstructions,
	}
	item.ItemTotal = pricing.ItemTotal(item.UnitPrice, item.Quantity, item.pricedExtras())

	// Always append. Identical selections stay separate lines.
	items = append(items, item)
	if err := s.store.Save(ctx, cartID, items); err != nil {
		return nil, err
	}

	s.SetReviewOpen(cartID, true)
	return derive(items, true), nil
}

func (s *service) RemoveItem(ctx context.Context, cartID, itemID string) (*Cart, error) {
	items, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.ID != itemID {
			filtered = append(filtered, item)
		}
	}
	// Absent id is a no-op, not an error.
	if len(filtered) != len(items) {
		if err := s.store.Save(ctx, cartID, filtered); err != nil {
			return nil, err
		}
	}
	return derive(filtered, s.isReviewOpen(cartID)), nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cartID, itemID)
	}

	return s.mutateItem(ctx, cartID, itemID, func(item *Item) {
		item.Quantity = quantity
		item.ItemTotal = pricing.ItemTotal(item.UnitPrice, item.Quantity, item.pricedExtras())
	})
}

func (s *service) UpdateItemExtras(ctx context.Context, cartID, itemID string, selections []ExtraSelection) (*Cart, error) {
	extras, err := s.resolveExtras(selections)
	if err != nil {
		return nil, err
	}
	return s.mutateItem(ctx, cartID, itemID, func(item *Item) {
		item.Extras = extras
		item.ItemTotal = pricing.ItemTotal(item.UnitPrice, item.Quantity, item.pricedExtras())
	})
}

func (s *service) UpdateSpecialInstructions(ctx context.Context, cartID, itemID, text string) (*Cart, error) {
	return s.mutateItem(ctx, cartID, itemID, func(item *Item) {
		item.SpecialInstructions = text
	})
}

func (s *service) SetReviewOpen(cartID string, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.reviewOpen[cartID] = true
		return
	}
	delete(s.reviewOpen, cartID)
}

func (s *service) Clear(ctx context.Context, cartID string) error {
	return s.store.Delete(ctx, cartID)
}

func (s *service) isReviewOpen(cartID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewOpen[cartID]
}

func (s *service) mutateItem(ctx context.Context, cartID, itemID string, apply func(*Item)) (*Cart, error) {
	items, err := s.store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID == itemID {
			apply(&items[i])
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if err := s.store.Save(ctx, cartID, items); err != nil {
		return nil, err
	}
	return derive(items, s.isReviewOpen(cartID)), nil
}

func (s *service) resolveExtras(selections []ExtraSelection) ([]ItemExtra, error) {
	extras := make([]ItemExtra, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "extra quantity must be at least 1")
		}
		extra, err := s.catalog.FindExtra(sel.ExtraID)
		if err != nil {
			return nil, err
		}
		extras = append(extras, ItemExtra{
			ExtraID:   extra.ID,
			Name:      extra.Name,
			UnitPrice: extra.Price,
			Quantity:  sel.Quantity,
		})
	}
	return extras, nil
}
