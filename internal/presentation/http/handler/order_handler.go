package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/application/service"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/dto/request"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/dto/response"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
	"github.com/shopspring/decimal"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles listing orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter request.OrderFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:       filter.Search,
		BusinessDate: filter.BusinessDate,
	}

	if filter.Status != "" {
		status, err := enum.ParseOrderStatus(filter.Status)
		if err != nil {
			response.Error(c, apperror.NewFieldError("status", "must be one of pending, completed, voided"))
			return
		}
		params.Status = &status
	}

	if filter.PaymentMethod != "" {
		method := enum.PaymentMethod(filter.PaymentMethod)
		if !method.IsValid() {
			response.Error(c, apperror.NewFieldError("payment_method", "must be one of cash, gcash, split, debit_card, credit_card"))
			return
		}
		params.PaymentMethod = &method
	}

	if filter.CashierID != "" {
		cashierID, err := uuid.Parse(filter.CashierID)
		if err != nil {
			response.BadRequest(c, "Invalid cashier ID")
			return
		}
		params.CashierID = &cashierID
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// Create handles ringing up an order
func (h *OrderHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		addOns := make([]service.AddOnInput, len(item.AddOns))
		for j, a := range item.AddOns {
			addOns[j] = service.AddOnInput{
				ProductID:      a.ProductID,
				ProductName:    a.ProductName,
				Variant:        a.Variant,
				Customizations: a.Customizations,
				Quantity:       a.Quantity,
				UnitPrice:      valueOrZero(a.UnitPrice),
			}
		}
		items[i] = service.OrderItemInput{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Variant:        item.Variant,
			Customizations: item.Customizations,
			Quantity:       item.Quantity,
			UnitPrice:      valueOrZero(item.UnitPrice),
			Discount:       item.Discount,
			AddOns:         addOns,
		}
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		CashierID:        *userID,
		OrderType:        req.OrderType,
		TableNumber:      req.TableNumber,
		Notes:            req.Notes,
		PaymentMethod:    enum.PaymentMethod(req.PaymentMethod),
		SplitCashAmount:  req.SplitCashAmount,
		SplitGcashAmount: req.SplitGcashAmount,
		Discount:         req.Discount,
		Items:            items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles getting a single order
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// Void handles voiding a completed order
func (h *OrderHandler) Void(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.VoidOrderRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.VoidOrder(c.Request.Context(), id, &service.VoidOrderInput{
		VoidedBy: *userID,
		Reason:   req.Reason,
		Pin:      req.Pin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order voided successfully", order)
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
