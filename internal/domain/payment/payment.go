// Package payment validates how an order total is tendered.
package payment

import (
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/pricing"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/shopspring/decimal"
)

// SplitTolerance is the largest accepted gap between split portions and the total
var SplitTolerance = decimal.New(1, -2)

// Tender is what the cashier submitted
type Tender struct {
	Method     enum.PaymentMethod
	SplitCash  *decimal.Decimal
	SplitGcash *decimal.Decimal
}

// Allocation is an accepted tender. Split portions are set only for split payments.
type Allocation struct {
	Method     enum.PaymentMethod
	SplitCash  *decimal.Decimal
	SplitGcash *decimal.Decimal
}

// Allocate checks the tender against the order total
func Allocate(total decimal.Decimal, t Tender) (*Allocation, error) {
	if !t.Method.IsValid() {
		return nil, apperror.NewFieldError("payment_method", "must be one of cash, gcash, split, debit_card, credit_card")
	}
	if t.Method != enum.PaymentMethodSplit {
		return &Allocation{Method: t.Method}, nil
	}

	var errs []apperror.FieldError
	checkPortion := func(field string, d *decimal.Decimal) {
		switch {
		case d == nil:
			errs = append(errs, apperror.FieldError{Field: field, Message: "is required for split payments"})
		case !d.IsPositive():
			errs = append(errs, apperror.FieldError{Field: field, Message: "must be greater than 0"})
		case !pricing.HasCents(*d):
			errs = append(errs, apperror.FieldError{Field: field, Message: "must have at most 2 decimal places"})
		}
	}
	checkPortion("split_cash_amount", t.SplitCash)
	checkPortion("split_gcash_amount", t.SplitGcash)
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	sum := t.SplitCash.Add(*t.SplitGcash)
	if sum.Sub(total).Abs().GreaterThan(SplitTolerance) {
		return nil, apperror.NewFieldError("split_cash_amount",
			"split amounts must add up to the order total of "+total.StringFixed(2))
	}

	cash, gcash := *t.SplitCash, *t.SplitGcash
	return &Allocation{
		Method:     t.Method,
		SplitCash:  &cash,
		SplitGcash: &gcash,
	}, nil
}
