package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Create inserts the order together with its items and add-ons
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// MarkVoided moves a completed order to voided. It reports false when no
	// completed order with that id exists.
	MarkVoided(ctx context.Context, id uuid.UUID, input VoidParams) (bool, error)
}

// VoidParams carries the audit fields stamped on a voided order
type VoidParams struct {
	VoidedBy uuid.UUID
	Reason   string
	At       time.Time
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	BusinessDate  string
	Status        *enum.OrderStatus
	PaymentMethod *enum.PaymentMethod
	CashierID     *uuid.UUID
}

// SalesReader aggregates completed orders per payment channel
type SalesReader interface {
	SummarizeSales(ctx context.Context, businessDate string) (*entity.SalesSummary, error)
}

// SequenceRepository hands out gap-free, strictly increasing numbers
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
