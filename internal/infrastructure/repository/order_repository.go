package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	domainRepo "github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

// NewSalesReader exposes the order table's per-channel sales aggregation
func NewSalesReader(db *gorm.DB) domainRepo.SalesReader {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	return conn(ctx, r.db).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Preload("Items.AddOns", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := conn(ctx, r.db).Model(&entity.Order{})

	if params.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}
	if params.BusinessDate != "" {
		query = query.Where("business_date = ?", params.BusinessDate)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}
	if params.CashierID != nil {
		query = query.Where("cashier_id = ?", *params.CashierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("sequence DESC").
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepository) MarkVoided(ctx context.Context, id uuid.UUID, input domainRepo.VoidParams) (bool, error) {
	res := conn(ctx, r.db).Model(&entity.Order{}).
		Where("id = ? AND status = ?", id, enum.OrderStatusCompleted).
		Updates(map[string]interface{}{
			"status":         enum.OrderStatusVoided,
			"payment_status": enum.PaymentStatusVoided,
			"voided_at":      input.At,
			"voided_by":      input.VoidedBy,
			"void_reason":    input.Reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SummarizeSales reads completed orders of the date and attributes them by channel.
// Summing happens in decimal rather than SQL so no driver rounds the money.
func (r *orderRepository) SummarizeSales(ctx context.Context, businessDate string) (*entity.SalesSummary, error) {
	var orders []entity.Order
	err := conn(ctx, r.db).
		Select("id", "status", "payment_method", "total", "split_cash_amount", "split_gcash_amount").
		Where("business_date = ? AND status = ?", businessDate, enum.OrderStatusCompleted).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	summary := &entity.SalesSummary{}
	for i := range orders {
		summary.Add(&orders[i])
	}
	return summary, nil
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a counter store backed by the order_sequences table
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the named counter and returns the new value. The UPDATE takes
// a row lock, so concurrent callers in separate transactions are serialized
// until the holder commits or rolls back.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := conn(ctx, r.db)

	if err := db.Clauses(onConflictDoNothing()).
		Create(&entity.OrderSequence{Name: name}).Error; err != nil {
		return 0, err
	}

	res := db.Model(&entity.OrderSequence{}).
		Where("name = ?", name).
		Update("value", gorm.Expr("value + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected != 1 {
		return 0, errors.New("sequence row missing: " + name)
	}

	var seq entity.OrderSequence
	if err := db.First(&seq, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
