package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a priced and paid sale. Orders are never deleted; a mistake is voided.
type Order struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrderNumber      string             `gorm:"size:32;uniqueIndex;not null" json:"order_number"`
	Sequence         int64              `gorm:"uniqueIndex;not null" json:"sequence"`
	BusinessDate     string             `gorm:"type:varchar(10);index;not null" json:"business_date"`
	OrderType        string             `gorm:"size:50" json:"order_type,omitempty"`
	TableNumber      string             `gorm:"size:50" json:"table_number,omitempty"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty"`
	SubTotal         decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	Discount         decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	Total            decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"-"`
	PaymentMethod    enum.PaymentMethod `gorm:"size:20;not null;index" json:"payment_method"`
	SplitCashAmount  *decimal.Decimal   `gorm:"type:decimal(12,2)" json:"-"`
	SplitGcashAmount *decimal.Decimal   `gorm:"type:decimal(12,2)" json:"-"`
	PaymentStatus    enum.PaymentStatus `gorm:"not null" json:"payment_status"`
	Status           enum.OrderStatus   `gorm:"not null;index" json:"status"`
	CashierID        uuid.UUID          `gorm:"type:uuid;index" json:"cashier_id"`
	VoidedAt         *time.Time         `json:"voided_at,omitempty"`
	VoidedBy         *uuid.UUID         `gorm:"type:uuid" json:"voided_by,omitempty"`
	VoidReason       string             `gorm:"size:255" json:"void_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// MarshalJSON renders monetary fields as fixed two-decimal strings
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		SubTotal         string  `json:"subtotal"`
		Discount         string  `json:"discount"`
		Total            string  `json:"total"`
		SplitCashAmount  *string `json:"split_cash_amount,omitempty"`
		SplitGcashAmount *string `json:"split_gcash_amount,omitempty"`
	}{
		Alias:            Alias(o),
		SubTotal:         money(o.SubTotal),
		Discount:         money(o.Discount),
		Total:            money(o.Total),
		SplitCashAmount:  moneyPtr(o.SplitCashAmount),
		SplitGcashAmount: moneyPtr(o.SplitGcashAmount),
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (Order) TableName() string {
	return "orders"
}

// IsVoided reports whether the order has been voided
func (o *Order) IsVoided() bool {
	return o.Status == enum.OrderStatusVoided
}

// OrderItem is a product line with a snapshot of its name and price at sale time
type OrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	LineNo         int             `gorm:"not null" json:"line_no"`
	ProductID      string          `gorm:"size:64" json:"product_id,omitempty"`
	ProductName    string          `gorm:"size:255;not null" json:"product_name"`
	Variant        string          `gorm:"size:50" json:"variant,omitempty"`
	Customizations Customizations  `gorm:"type:text" json:"customizations,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	Discount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`

	AddOns []OrderItemAddOn `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"add_ons,omitempty"`
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		UnitPrice string `json:"unit_price"`
		Discount  string `json:"discount"`
		LineTotal string `json:"line_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: money(i.UnitPrice),
		Discount:  money(i.Discount),
		LineTotal: money(i.LineTotal),
	})
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OrderItemAddOn is an extra attached to an item, e.g. an extra shot
type OrderItemAddOn struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderItemID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_item_id"`
	LineNo         int             `gorm:"not null" json:"line_no"`
	ProductID      string          `gorm:"size:64" json:"product_id,omitempty"`
	ProductName    string          `gorm:"size:255;not null" json:"product_name"`
	Variant        string          `gorm:"size:50" json:"variant,omitempty"`
	Customizations Customizations  `gorm:"type:text" json:"customizations,omitempty"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (a OrderItemAddOn) MarshalJSON() ([]byte, error) {
	type Alias OrderItemAddOn
	return json.Marshal(&struct {
		Alias
		UnitPrice string `json:"unit_price"`
		LineTotal string `json:"line_total"`
	}{
		Alias:     Alias(a),
		UnitPrice: money(a.UnitPrice),
		LineTotal: money(a.LineTotal),
	})
}

func (a *OrderItemAddOn) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (OrderItemAddOn) TableName() string {
	return "order_item_add_ons"
}

// OrderSequenceName names the counter row backing order numbers
const OrderSequenceName = "orders"

// OrderSequence is a named monotonically increasing counter
type OrderSequence struct {
	Name      string `gorm:"size:50;primaryKey"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}

func (OrderSequence) TableName() string {
	return "order_sequences"
}
