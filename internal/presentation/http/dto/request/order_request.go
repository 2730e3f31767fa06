package request

import (
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// AddOnRequest is an extra attached to an order item
type AddOnRequest struct {
	ProductID      string                `json:"product_id" binding:"omitempty,max=64"`
	ProductName    string                `json:"product_name" binding:"required,max=255"`
	Variant        string                `json:"variant" binding:"omitempty,max=50"`
	Customizations entity.Customizations `json:"customizations"`
	Quantity       *int                  `json:"quantity"`
	UnitPrice      *decimal.Decimal      `json:"unit_price" binding:"required"`
}

// OrderItemRequest is one cart line
type OrderItemRequest struct {
	ProductID      string                `json:"product_id" binding:"omitempty,max=64"`
	ProductName    string                `json:"product_name" binding:"required,max=255"`
	Variant        string                `json:"variant" binding:"omitempty,max=50"`
	Customizations entity.Customizations `json:"customizations"`
	Quantity       int                   `json:"quantity"`
	UnitPrice      *decimal.Decimal      `json:"unit_price" binding:"required"`
	Discount       decimal.Decimal       `json:"discount"`
	AddOns         []AddOnRequest        `json:"add_ons" binding:"omitempty,dive"`
}

// CreateOrderRequest represents an order submitted by the register
type CreateOrderRequest struct {
	PaymentMethod    string             `json:"payment_method" binding:"required"`
	OrderType        string             `json:"order_type" binding:"omitempty,max=50"`
	TableNumber      string             `json:"table_number" binding:"omitempty,max=50"`
	Notes            string             `json:"notes" binding:"omitempty,max=1000"`
	Discount         decimal.Decimal    `json:"discount"`
	SplitCashAmount  *decimal.Decimal   `json:"split_cash_amount"`
	SplitGcashAmount *decimal.Decimal   `json:"split_gcash_amount"`
	Items            []OrderItemRequest `json:"items" binding:"required,dive"`
}

// VoidOrderRequest represents a void request. The body is optional.
type VoidOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=255"`
	Pin    string `json:"pin" binding:"omitempty,max=32"`
}

// OrderFilterRequest represents order list query parameters
type OrderFilterRequest struct {
	Search        string `form:"search"`
	BusinessDate  string `form:"business_date"`
	Status        string `form:"status"`
	PaymentMethod string `form:"payment_method"`
	CashierID     string `form:"cashier_id"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
