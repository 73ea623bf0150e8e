package pricing

import (
	"github.com/shopspring/decimal"
)

// TaxRate is the flat VAT rate applied to every order.
var TaxRate = decimal.RequireFromString("0.21")

// SelectedExtra is one add-on line feeding an item total.
type SelectedExtra struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// PricedItem is the slice of a cart line the cart-level totals need.
type PricedItem struct {
	ItemTotal decimal.Decimal
	Quantity  int
}

// Totals is the derived cart or order aggregate.
type Totals struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// ItemTotal computes one cart line's price:
//
//	(unitPrice + Σ extra.unitPrice × extra.quantity) × quantity
//
// rounded to 2 decimal places. Extras quantities are independent of the
// parent quantity: each extra is priced per parent unit.
func ItemTotal(unitPrice decimal.Decimal, quantity int, extras []SelectedExtra) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero.Round(2)
	}
	perUnit := unitPrice
	for _, extra := range extras {
		if extra.Quantity <= 0 {
			continue
		}
		perUnit = perUnit.Add(extra.UnitPrice.Mul(decimal.NewFromInt(int64(extra.Quantity))))
	}
	return perUnit.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// CartTotals derives subtotal, tax and total from already-rounded item
// totals. Rounding happens twice, once per item and once here; the two
// stages are never reconciled, so aggregate figures match what a sum of
// displayed line totals would show.
func CartTotals(items []PricedItem) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.ItemTotal)
		count += item.Quantity
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal.Add(tax),
		ItemCount: count,
	}
}
