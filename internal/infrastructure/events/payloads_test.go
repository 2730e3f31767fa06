package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderPayload(t *testing.T) {
	o := &entity.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-000007",
		BusinessDate:  "2024-05-01",
		TableNumber:   "T4",
		PaymentMethod: enum.PaymentMethodCash,
		Total:         decimal.RequireFromString("150"),
		Status:        enum.OrderStatusCompleted,
		Items: []entity.OrderItem{{
			ProductName:    "Americano",
			Variant:        "iced",
			Quantity:       2,
			Customizations: entity.Customizations{{Key: "sugar", Value: "less"}},
			AddOns:         []entity.OrderItemAddOn{{ProductName: "Extra shot", Quantity: 1}},
		}},
	}

	p := NewOrderPayload(o)
	assert.Equal(t, "ORD-000007", p.OrderNumber)
	assert.Equal(t, "150.00", p.Total)
	assert.Equal(t, "completed", p.Status)
	require.Len(t, p.Lines, 1)
	assert.Equal(t, "iced", p.Lines[0].Variant)
	require.Len(t, p.Lines[0].AddOns, 1)
	assert.Equal(t, "Extra shot", p.Lines[0].AddOns[0].Name)
}

func TestNewLedgerPayload(t *testing.T) {
	actual := decimal.RequireFromString("715")
	variance := decimal.RequireFromString("-5")
	p := NewLedgerPayload(&entity.DailyLedger{
		BusinessDate:    "2024-05-01",
		ExpectedBalance: decimal.RequireFromString("720"),
		ActualBalance:   &actual,
		Variance:        &variance,
	})
	assert.Equal(t, "720.00", p.ExpectedBalance)
	assert.Equal(t, "715.00", p.ActualBalance)
	assert.Equal(t, "-5.00", p.Variance)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), OrderCreated, struct{}{}))
	assert.NoError(t, p.Close())
}
