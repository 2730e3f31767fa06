package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/payment"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/pricing"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/events"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/metrics"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
	"github.com/reancirl/coffee-erp-sub000/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// OrderOptions are the café-level settings the order flow depends on
type OrderOptions struct {
	NumberPrefix string
	// VoidPinHash is a bcrypt hash of the manager PIN. Empty disables the check.
	VoidPinHash string
	Location    *time.Location
}

// OrderService prices, persists and voids orders
type OrderService struct {
	tx        repository.Transactor
	orderRepo repository.OrderRepository
	seqRepo   repository.SequenceRepository
	publisher events.Publisher
	metrics   *metrics.Recorder
	log       *zap.Logger
	opts      OrderOptions
	now       func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
	publisher events.Publisher,
	recorder *metrics.Recorder,
	log *zap.Logger,
	opts OrderOptions,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &OrderService{
		tx:        tx,
		orderRepo: orderRepo,
		seqRepo:   seqRepo,
		publisher: publisher,
		metrics:   recorder,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

// AddOnInput is an add-on as submitted by the register
type AddOnInput struct {
	ProductID      string
	ProductName    string
	Variant        string
	Customizations entity.Customizations
	Quantity       *int
	UnitPrice      decimal.Decimal
}

// OrderItemInput is a cart line as submitted by the register
type OrderItemInput struct {
	ProductID      string
	ProductName    string
	Variant        string
	Customizations entity.Customizations
	Quantity       int
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
	AddOns         []AddOnInput
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	CashierID        uuid.UUID
	OrderType        string
	TableNumber      string
	Notes            string
	PaymentMethod    enum.PaymentMethod
	SplitCashAmount  *decimal.Decimal
	SplitGcashAmount *decimal.Decimal
	Discount         decimal.Decimal
	Items            []OrderItemInput
}

func (in *CreateOrderInput) cart() pricing.Cart {
	cart := pricing.Cart{
		Items:    make([]pricing.Item, len(in.Items)),
		Discount: in.Discount,
	}
	for i, item := range in.Items {
		addOns := make([]pricing.AddOn, len(item.AddOns))
		for j, a := range item.AddOns {
			addOns[j] = pricing.AddOn{UnitPrice: a.UnitPrice, Quantity: a.Quantity}
		}
		cart.Items[i] = pricing.Item{
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Discount:  item.Discount,
			AddOns:    addOns,
		}
	}
	return cart
}

// CreateOrder prices the cart, checks the tender and stores the order with
// its items and add-ons in a single transaction.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error) {
	quote, err := pricing.Calculate(input.cart())
	if err != nil {
		s.metrics.OrderFailed("create", "validation")
		return nil, err
	}
	alloc, err := payment.Allocate(quote.Total, payment.Tender{
		Method:     input.PaymentMethod,
		SplitCash:  input.SplitCashAmount,
		SplitGcash: input.SplitGcashAmount,
	})
	if err != nil {
		s.metrics.OrderFailed("create", "validation")
		return nil, err
	}

	order := s.buildOrder(input, quote, alloc)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		seq, err := s.seqRepo.Next(ctx, entity.OrderSequenceName)
		if err != nil {
			return err
		}
		order.Sequence = seq
		order.OrderNumber = utils.FormatOrderNumber(s.opts.NumberPrefix, seq)
		return s.orderRepo.Create(ctx, order)
	})
	if err != nil {
		s.metrics.OrderFailed("create", "persistence")
		s.log.Error("failed to create order",
			zap.String("cashier_id", input.CashierID.String()),
			zap.String("payment_method", input.PaymentMethod.String()),
			zap.Error(err),
		)
		return nil, apperror.NewInternalError("Failed to create order")
	}

	created, err := s.orderRepo.GetWithItems(ctx, order.ID)
	if err != nil || created == nil {
		s.log.Warn("failed to reload created order", zap.String("order_id", order.ID.String()), zap.Error(err))
		created = order
	}

	s.publish(ctx, events.OrderCreated, created)
	s.metrics.OrderCreated(created.PaymentMethod.String(), created.Total.InexactFloat64())
	s.log.Info("order created",
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.Total.StringFixed(2)),
		zap.String("payment_method", created.PaymentMethod.String()),
	)
	return created, nil
}

func (s *OrderService) buildOrder(input *CreateOrderInput, quote *pricing.Quote, alloc *payment.Allocation) *entity.Order {
	order := &entity.Order{
		BusinessDate:     utils.FormatBusinessDate(s.now(), s.opts.Location),
		OrderType:        input.OrderType,
		TableNumber:      input.TableNumber,
		Notes:            input.Notes,
		SubTotal:         quote.Subtotal,
		Discount:         quote.Discount,
		Total:            quote.Total,
		PaymentMethod:    alloc.Method,
		SplitCashAmount:  alloc.SplitCash,
		SplitGcashAmount: alloc.SplitGcash,
		PaymentStatus:    enum.PaymentStatusPaid,
		Status:           enum.OrderStatusCompleted,
		CashierID:        input.CashierID,
		Items:            make([]entity.OrderItem, len(input.Items)),
	}

	for i, item := range input.Items {
		iq := quote.Items[i]
		addOns := make([]entity.OrderItemAddOn, len(item.AddOns))
		for j, a := range item.AddOns {
			addOns[j] = entity.OrderItemAddOn{
				LineNo:         j + 1,
				ProductID:      a.ProductID,
				ProductName:    a.ProductName,
				Variant:        a.Variant,
				Customizations: a.Customizations,
				Quantity:       iq.AddOns[j].Quantity,
				UnitPrice:      a.UnitPrice,
				LineTotal:      iq.AddOns[j].LineTotal,
			}
		}
		order.Items[i] = entity.OrderItem{
			LineNo:         i + 1,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Variant:        item.Variant,
			Customizations: item.Customizations,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Discount:       item.Discount,
			LineTotal:      iq.LineTotal,
			AddOns:         addOns,
		}
	}
	return order
}

// VoidOrderInput carries who voids an order and why
type VoidOrderInput struct {
	VoidedBy uuid.UUID
	Reason   string
	Pin      string
}

// VoidOrder marks a completed order voided. Items are left untouched and the
// order drops out of every later sales computation.
func (s *OrderService) VoidOrder(ctx context.Context, id uuid.UUID, input *VoidOrderInput) (*entity.Order, error) {
	if s.opts.VoidPinHash != "" {
		if input.Pin == "" {
			return nil, apperror.NewFieldError("pin", "is required to void an order")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.opts.VoidPinHash), []byte(input.Pin)); err != nil {
			s.metrics.OrderFailed("void", "pin")
			return nil, apperror.NewForbiddenError("Invalid manager PIN")
		}
	}

	voided, err := s.orderRepo.MarkVoided(ctx, id, repository.VoidParams{
		VoidedBy: input.VoidedBy,
		Reason:   input.Reason,
		At:       s.now(),
	})
	if err != nil {
		s.log.Error("failed to void order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, apperror.NewInternalError("Failed to void order")
	}

	if !voided {
		existing, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, apperror.NewInternalError("Failed to void order")
		}
		if existing == nil {
			return nil, apperror.NewNotFoundError("Order")
		}
		s.metrics.OrderFailed("void", "conflict")
		if existing.IsVoided() {
			return nil, apperror.NewConflictError("Order is already voided")
		}
		return nil, apperror.NewConflictError("Only completed orders can be voided")
	}

	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to load order")
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	s.publish(ctx, events.OrderVoided, order)
	s.metrics.OrderVoided()
	s.log.Info("order voided",
		zap.String("order_number", order.OrderNumber),
		zap.String("voided_by", input.VoidedBy.String()),
	)
	return order, nil
}

// GetOrder returns an order with its items and add-ons
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		s.log.Error("failed to load order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, apperror.NewInternalError("Failed to load order")
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns a page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		s.log.Error("failed to list orders", zap.Error(err))
		return nil, apperror.NewInternalError("Failed to list orders")
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}

func (s *OrderService) publish(ctx context.Context, key string, order *entity.Order) {
	if err := s.publisher.Publish(ctx, key, events.NewOrderPayload(order)); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event", key),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}
