package events

import (
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
)

// OrderLine is a kitchen-facing view of an item
type OrderLine struct {
	Name           string                `json:"name"`
	Variant        string                `json:"variant,omitempty"`
	Quantity       int                   `json:"quantity"`
	Customizations entity.Customizations `json:"customizations,omitempty"`
	AddOns         []OrderLine           `json:"add_ons,omitempty"`
}

// OrderPayload is published on order.created and order.voided
type OrderPayload struct {
	OrderID       string      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	BusinessDate  string      `json:"business_date"`
	OrderType     string      `json:"order_type,omitempty"`
	TableNumber   string      `json:"table_number,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Total         string      `json:"total"`
	Status        string      `json:"status"`
	VoidReason    string      `json:"void_reason,omitempty"`
	Lines         []OrderLine `json:"lines,omitempty"`
}

// NewOrderPayload builds the payload from a fully loaded order
func NewOrderPayload(o *entity.Order) OrderPayload {
	p := OrderPayload{
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		BusinessDate:  o.BusinessDate,
		OrderType:     o.OrderType,
		TableNumber:   o.TableNumber,
		PaymentMethod: o.PaymentMethod.String(),
		Total:         o.Total.StringFixed(2),
		Status:        o.Status.String(),
		VoidReason:    o.VoidReason,
	}
	for _, item := range o.Items {
		line := OrderLine{
			Name:           item.ProductName,
			Variant:        item.Variant,
			Quantity:       item.Quantity,
			Customizations: item.Customizations,
		}
		for _, a := range item.AddOns {
			line.AddOns = append(line.AddOns, OrderLine{
				Name:           a.ProductName,
				Variant:        a.Variant,
				Quantity:       a.Quantity,
				Customizations: a.Customizations,
			})
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

// LedgerPayload is published on ledger.closed
type LedgerPayload struct {
	BusinessDate    string `json:"business_date"`
	ExpectedBalance string `json:"expected_balance"`
	ActualBalance   string `json:"actual_balance"`
	Variance        string `json:"variance"`
	VarianceNotes   string `json:"variance_notes,omitempty"`
}

// NewLedgerPayload builds the payload from a closed ledger
func NewLedgerPayload(l *entity.DailyLedger) LedgerPayload {
	p := LedgerPayload{
		BusinessDate:    l.BusinessDate,
		ExpectedBalance: l.ExpectedBalance.StringFixed(2),
		VarianceNotes:   l.VarianceNotes,
	}
	if l.ActualBalance != nil {
		p.ActualBalance = l.ActualBalance.StringFixed(2)
	}
	if l.Variance != nil {
		p.Variance = l.Variance.StringFixed(2)
	}
	return p
}
