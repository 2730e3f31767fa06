package request

import (
	"github.com/shopspring/decimal"
)

// OpenLedgerRequest opens a business date with a counted float
type OpenLedgerRequest struct {
	Date           string           `json:"date" binding:"required"`
	OpeningBalance *decimal.Decimal `json:"opening_balance" binding:"required"`
}

// CashFlowRequest records a manual drawer movement
type CashFlowRequest struct {
	Type   string           `json:"type" binding:"required,oneof=cash_in cash_out"`
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Note   string           `json:"note" binding:"required,max=500"`
}

// CloseLedgerRequest is the end-of-day count
type CloseLedgerRequest struct {
	ActualBalance *decimal.Decimal `json:"actual_balance" binding:"required"`
	VarianceNotes string           `json:"variance_notes" binding:"omitempty,max=2000"`
}

// VarianceNotesRequest replaces the notes of a ledger
type VarianceNotesRequest struct {
	VarianceNotes string `json:"variance_notes" binding:"max=2000"`
}

// LedgerFilterRequest represents ledger history query parameters
type LedgerFilterRequest struct {
	Status  string `form:"status"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
