package checkout

import (
	"github.com/mmfactory/pizzeria-backend/internal/cart"
	"github.com/mmfactory/pizzeria-backend/internal/pricing"
	"github.com/mmfactory/pizzeria-backend/pkg/db/models"
)

// snapshotItems freezes cart lines into order line items. The copies are
// decoupled from the live catalog so historical orders keep their prices.
func snapshotItems(items []cart.Item) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		extras := make([]models.OrderItemExtra, 0, len(item.Extras))
		for _, extra := range item.Extras {
			extras = append(extras, models.OrderItemExtra{
				ExtraID:    extra.ExtraID,
				ExtraName:  extra.Name,
				ExtraPrice: extra.UnitPrice,
				Quantity:   extra.Quantity,
			})
		}
		out = append(out, models.OrderItem{
			MenuItemID:          item.MenuItemID,
			MenuItemName:        item.MenuItemName,
			MenuItemPrice:       item.UnitPrice,
			Quantity:            item.Quantity,
			Extras:              extras,
			SpecialInstructions: item.SpecialInstructions,
			ItemTotal:           item.ItemTotal,
		})
	}
	return out
}

func snapshotTotals(items []models.OrderItem) pricing.Totals {
	priced := make([]pricing.PricedItem, 0, len(items))
	for _, item := range items {
		priced = append(priced, pricing.PricedItem{ItemTotal: item.ItemTotal, Quantity: item.Quantity})
	}
	return pricing.CartTotals(priced)
}
