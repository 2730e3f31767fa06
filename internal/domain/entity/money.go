package entity

import "github.com/shopspring/decimal"

// money renders an amount the way every API response shows it: two fixed decimals
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
