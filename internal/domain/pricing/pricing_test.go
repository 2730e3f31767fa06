package pricing_test

import (
	"testing"

	"github.com/reancirl/coffee-erp-sub000/internal/domain/pricing"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int {
	return &i
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.Equal(t, 422, appErr.Code)
	out := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	t.Run("item with add-on", func(t *testing.T) {
		t.Parallel()

		q, err := pricing.Calculate(pricing.Cart{
			Items: []pricing.Item{{
				UnitPrice: d("100"),
				Quantity:  1,
				AddOns:    []pricing.AddOn{{UnitPrice: d("20")}},
			}},
		})
		require.NoError(t, err)
		assert.True(t, q.Subtotal.Equal(d("120")), q.Subtotal.String())
		assert.True(t, q.Total.Equal(d("120")), q.Total.String())
		assert.Equal(t, 1, q.Items[0].AddOns[0].Quantity)
	})

	t.Run("quantities discounts and add-on quantity", func(t *testing.T) {
		t.Parallel()

		q, err := pricing.Calculate(pricing.Cart{
			Items: []pricing.Item{
				{
					UnitPrice: d("85.50"),
					Quantity:  2,
					Discount:  d("10"),
					AddOns: []pricing.AddOn{
						{UnitPrice: d("15"), Quantity: intPtr(3)},
						{UnitPrice: d("0")},
					},
				},
				{UnitPrice: d("45.25"), Quantity: 1},
			},
			Discount: d("5.75"),
		})
		require.NoError(t, err)

		// 171.00 + 45.00 + 0 - 10 = 206.00
		assert.Equal(t, "206.00", q.Items[0].LineTotal.StringFixed(2))
		assert.Equal(t, "45.00", q.Items[0].AddOns[0].LineTotal.StringFixed(2))
		assert.Equal(t, "45.25", q.Items[1].LineTotal.StringFixed(2))
		assert.Equal(t, "251.25", q.Subtotal.StringFixed(2))
		assert.Equal(t, "245.50", q.Total.StringFixed(2))
	})

	t.Run("subtotal equals sum of lines", func(t *testing.T) {
		t.Parallel()

		cart := pricing.Cart{}
		for i := 1; i <= 7; i++ {
			cart.Items = append(cart.Items, pricing.Item{
				UnitPrice: d("0.10").Mul(decimal.NewFromInt(int64(i))),
				Quantity:  i,
				AddOns:    []pricing.AddOn{{UnitPrice: d("0.05")}},
			})
		}
		q, err := pricing.Calculate(cart)
		require.NoError(t, err)

		sum := decimal.Zero
		for _, item := range q.Items {
			sum = sum.Add(item.LineTotal)
		}
		assert.True(t, sum.Equal(q.Subtotal))
		assert.True(t, q.Total.Equal(q.Subtotal.Sub(q.Discount)))
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		cart := pricing.Cart{Items: []pricing.Item{{UnitPrice: d("33.33"), Quantity: 3}}}
		a, err := pricing.Calculate(cart)
		require.NoError(t, err)
		b, err := pricing.Calculate(cart)
		require.NoError(t, err)
		assert.Equal(t, a.Total.String(), b.Total.String())
	})
}

func TestCalculateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cart   pricing.Cart
		fields []string
	}{
		{
			name:   "empty cart",
			cart:   pricing.Cart{},
			fields: []string{"items"},
		},
		{
			name: "negative unit price",
			cart: pricing.Cart{Items: []pricing.Item{{UnitPrice: d("-1"), Quantity: 1}}},
			fields: []string{
				"items[0].unit_price",
				"items[0].discount",
			},
		},
		{
			name:   "zero quantity",
			cart:   pricing.Cart{Items: []pricing.Item{{UnitPrice: d("10"), Quantity: 0}}},
			fields: []string{"items[0].quantity"},
		},
		{
			name: "explicit zero add-on quantity",
			cart: pricing.Cart{Items: []pricing.Item{{
				UnitPrice: d("10"), Quantity: 1,
				AddOns: []pricing.AddOn{{UnitPrice: d("5"), Quantity: intPtr(0)}},
			}}},
			fields: []string{"items[0].add_ons[0].quantity"},
		},
		{
			name:   "sub-cent price",
			cart:   pricing.Cart{Items: []pricing.Item{{UnitPrice: d("10.005"), Quantity: 1}}},
			fields: []string{"items[0].unit_price"},
		},
		{
			name:   "item discount above line",
			cart:   pricing.Cart{Items: []pricing.Item{{UnitPrice: d("10"), Quantity: 1, Discount: d("10.01")}}},
			fields: []string{"items[0].discount"},
		},
		{
			name:   "order discount above subtotal",
			cart:   pricing.Cart{Items: []pricing.Item{{UnitPrice: d("10"), Quantity: 1}}, Discount: d("11")},
			fields: []string{"discount"},
		},
		{
			name:   "negative order discount",
			cart:   pricing.Cart{Items: []pricing.Item{{UnitPrice: d("10"), Quantity: 1}}, Discount: d("-1")},
			fields: []string{"discount"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := pricing.Calculate(tt.cart)
			got := fields(t, err)
			for _, f := range tt.fields {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestCalculateCollectsEveryError(t *testing.T) {
	t.Parallel()

	_, err := pricing.Calculate(pricing.Cart{Items: []pricing.Item{
		{UnitPrice: d("-5"), Quantity: 0},
		{UnitPrice: d("1"), Quantity: 1, AddOns: []pricing.AddOn{{UnitPrice: d("-2")}}},
	}})
	got := fields(t, err)
	assert.Contains(t, got, "items[0].unit_price")
	assert.Contains(t, got, "items[0].quantity")
	assert.Contains(t, got, "items[1].add_ons[0].unit_price")
}

func TestHasCents(t *testing.T) {
	t.Parallel()

	assert.True(t, pricing.HasCents(d("1.50")))
	assert.True(t, pricing.HasCents(d("1.500")))
	assert.True(t, pricing.HasCents(d("7")))
	assert.False(t, pricing.HasCents(d("0.001")))
}
