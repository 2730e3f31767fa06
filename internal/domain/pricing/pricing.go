// Package pricing turns a cart into authoritative order totals.
//
// Every amount is a decimal with at most two fractional digits. Discounts are
// additive: an item discount reduces its own line, the order discount reduces
// the subtotal, and neither is applied to the other.
package pricing

import (
	"fmt"

	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/shopspring/decimal"
)

// AddOn is an extra priced on top of its item. A nil Quantity means one.
type AddOn struct {
	UnitPrice decimal.Decimal
	Quantity  *int
}

// Item is one cart line
type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  decimal.Decimal
	AddOns    []AddOn
}

// Cart is the pricing input for a whole order
type Cart struct {
	Items    []Item
	Discount decimal.Decimal
}

// AddOnQuote is the priced form of an AddOn
type AddOnQuote struct {
	Quantity  int
	LineTotal decimal.Decimal
}

// ItemQuote is the priced form of an Item
type ItemQuote struct {
	LineTotal decimal.Decimal
	AddOns    []AddOnQuote
}

// Quote holds the computed totals; Items is index-aligned with Cart.Items
type Quote struct {
	Items    []ItemQuote
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Calculate prices the cart. It returns a validation error listing every
// offending field when the cart is malformed.
func Calculate(cart Cart) (*Quote, error) {
	var errs []apperror.FieldError
	fail := func(field, msg string) {
		errs = append(errs, apperror.FieldError{Field: field, Message: msg})
	}

	if len(cart.Items) == 0 {
		fail("items", "at least one item is required")
	}
	checkAmount("discount", cart.Discount, fail)

	quote := &Quote{
		Items:    make([]ItemQuote, len(cart.Items)),
		Subtotal: decimal.Zero,
		Discount: cart.Discount,
	}

	for i, item := range cart.Items {
		path := fmt.Sprintf("items[%d]", i)
		checkAmount(path+".unit_price", item.UnitPrice, fail)
		checkAmount(path+".discount", item.Discount, fail)
		if item.Quantity < 1 {
			fail(path+".quantity", "must be at least 1")
		}

		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		addOns := make([]AddOnQuote, len(item.AddOns))
		for j, addOn := range item.AddOns {
			addOnPath := fmt.Sprintf("%s.add_ons[%d]", path, j)
			checkAmount(addOnPath+".unit_price", addOn.UnitPrice, fail)

			qty := 1
			if addOn.Quantity != nil {
				qty = *addOn.Quantity
				if qty < 1 {
					fail(addOnPath+".quantity", "must be at least 1")
				}
			}

			total := addOn.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
			addOns[j] = AddOnQuote{Quantity: qty, LineTotal: total}
			line = line.Add(total)
		}

		line = line.Sub(item.Discount)
		if line.IsNegative() {
			fail(path+".discount", "must not exceed the item total")
		}

		quote.Items[i] = ItemQuote{LineTotal: line, AddOns: addOns}
		quote.Subtotal = quote.Subtotal.Add(line)
	}

	quote.Total = quote.Subtotal.Sub(cart.Discount)
	if len(errs) == 0 && quote.Total.IsNegative() {
		fail("discount", "must not exceed the subtotal")
	}

	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return quote, nil
}

func checkAmount(field string, d decimal.Decimal, fail func(field, msg string)) {
	if d.IsNegative() {
		fail(field, "must not be negative")
		return
	}
	if !HasCents(d) {
		fail(field, "must have at most 2 decimal places")
	}
}

// HasCents reports whether d is representable with at most two fractional digits
func HasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
