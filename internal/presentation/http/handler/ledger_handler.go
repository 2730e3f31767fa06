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
)

// LedgerHandler handles daily cash ledger HTTP requests
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) date(c *gin.Context) string {
	return businessDateParam(c, h.ledgerService.Today)
}

func actor(c *gin.Context) uuid.UUID {
	if id := GetUserID(c); id != nil {
		return *id
	}
	return uuid.Nil
}

// List handles ledger history
func (h *LedgerHandler) List(c *gin.Context) {
	var filter request.LedgerFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.LedgerFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		From: filter.From,
		To:   filter.To,
	}
	switch filter.Status {
	case "":
	case "open":
		status := enum.LedgerStatusOpen
		params.Status = &status
	case "closed":
		status := enum.LedgerStatusClosed
		params.Status = &status
	default:
		response.Error(c, apperror.NewFieldError("status", "must be one of open, closed"))
		return
	}

	result, err := h.ledgerService.ListLedgers(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Ledgers retrieved successfully", result)
}

// Get returns the ledger for a date, creating it on first access
func (h *LedgerHandler) Get(c *gin.Context) {
	ledger, err := h.ledgerService.GetOrCreateLedger(c.Request.Context(), h.date(c), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger retrieved successfully", ledger)
}

// Open creates a ledger with an explicit opening balance
func (h *LedgerHandler) Open(c *gin.Context) {
	var req request.OpenLedgerRequest
	if !bindJSON(c, &req) {
		return
	}

	date := req.Date
	if date == "today" {
		date = h.ledgerService.Today()
	}

	ledger, err := h.ledgerService.OpenLedger(c.Request.Context(), date, *req.OpeningBalance, actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Ledger opened successfully", ledger)
}

// Recompute refreshes the sales figures from the day's orders
func (h *LedgerHandler) Recompute(c *gin.Context) {
	ledger, err := h.ledgerService.RecomputeSales(c.Request.Context(), h.date(c), actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales recomputed successfully", ledger)
}

// RecordCashFlow appends a cash in or cash out entry
func (h *LedgerHandler) RecordCashFlow(c *gin.Context) {
	var req request.CashFlowRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := h.ledgerService.RecordCashFlow(c.Request.Context(), h.date(c), &service.CashFlowInput{
		Type:       enum.CashFlowType(req.Type),
		Amount:     *req.Amount,
		Note:       req.Note,
		RecordedBy: actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash flow recorded successfully", ledger)
}

// Close records the counted cash and closes the day
func (h *LedgerHandler) Close(c *gin.Context) {
	var req request.CloseLedgerRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := h.ledgerService.CloseLedger(c.Request.Context(), h.date(c), &service.CloseLedgerInput{
		ActualBalance: *req.ActualBalance,
		VarianceNotes: req.VarianceNotes,
		ClosedBy:      actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger closed successfully", ledger)
}

// UpdateVarianceNotes replaces the variance explanation
func (h *LedgerHandler) UpdateVarianceNotes(c *gin.Context) {
	var req request.VarianceNotesRequest
	if !bindJSON(c, &req) {
		return
	}

	ledger, err := h.ledgerService.UpdateVarianceNotes(c.Request.Context(), h.date(c), req.VarianceNotes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Variance notes updated successfully", ledger)
}
