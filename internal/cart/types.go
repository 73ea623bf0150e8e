package cart

import (
	"github.com/shopspring/decimal"

	"github.com/mmfactory/pizzeria-backend/internal/pricing"
)

// ItemExtra is one selected add-on on a cart line.
type ItemExtra struct {
	ExtraID   string          `json:"extra_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Item is one line in the shopper's in-progress cart.
type Item struct {
	ID                  string          `json:"id"`
	MenuItemID          string          `json:"menu_item_id"`
	MenuItemName        string          `json:"menu_item_name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	Extras              []ItemExtra     `json:"extras,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	ItemTotal           decimal.Decimal `json:"item_total"`
}

// Cart is the derived view handed back after every operation. Totals are
// recomputed from current contents on every access, never cached. The
// review-panel flag is session state and is not persisted with the items.
type Cart struct {
	Items      []Item          `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"item_count"`
	ReviewOpen bool            `json:"review_open"`
}

func (i Item) pricedExtras() []pricing.SelectedExtra {
	extras := make([]pricing.SelectedExtra, 0, len(i.Extras))
	for _, extra := range i.Extras {
		extras = append(extras, pricing.SelectedExtra{UnitPrice: extra.UnitPrice, Quantity: extra.Quantity})
	}
	return extras
}

func derive(items []Item, reviewOpen bool) *Cart {
	priced := make([]pricing.PricedItem, 0, len(items))
	for _, item := range items {
		priced = append(priced, pricing.PricedItem{ItemTotal: item.ItemTotal, Quantity: item.Quantity})
	}
	totals := pricing.CartTotals(priced)
	return &Cart{
		Items:      items,
		Subtotal:   totals.Subtotal,
		Tax:        totals.Tax,
		Total:      totals.Total,
		ItemCount:  totals.ItemCount,
		ReviewOpen: reviewOpen,
	}
}
