package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrLedgerClosed is returned by every mutation attempted on a closed ledger
var ErrLedgerClosed = errors.New("ledger is closed")

// DailyLedger reconciles one business date of the cash drawer:
//
//	expected = opening + cash sales + split cash sales + cash in - cash out
//	variance = actual - expected
//
// Sales fields are derived from orders and are replaced wholesale on every
// recompute. Once closed, only VarianceNotes may change.
type DailyLedger struct {
	ID                uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	BusinessDate      string            `gorm:"type:varchar(10);uniqueIndex;not null" json:"business_date"`
	OpeningBalance    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	CarriedForward    bool              `gorm:"not null;default:false" json:"carried_forward"`
	CashSales         decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	GcashSales        decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	SplitCashSales    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	SplitGcashSales   decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	CardSales         decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	OrderCount        int64             `gorm:"not null" json:"order_count"`
	CashIn            decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	CashOut           decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	ExpectedBalance   decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	ActualBalance     *decimal.Decimal  `gorm:"type:decimal(12,2)" json:"-"`
	Variance          *decimal.Decimal  `gorm:"type:decimal(12,2)" json:"-"`
	VarianceNotes     string            `gorm:"type:text" json:"variance_notes,omitempty"`
	Status            enum.LedgerStatus `gorm:"not null;index" json:"status"`
	EntryCount        int               `gorm:"not null" json:"entry_count"`
	OpenedBy          *uuid.UUID        `gorm:"type:uuid" json:"opened_by,omitempty"`
	OpenedAt          time.Time         `json:"opened_at"`
	ClosedBy          *uuid.UUID        `gorm:"type:uuid" json:"closed_by,omitempty"`
	ClosedAt          *time.Time        `json:"closed_at,omitempty"`
	SalesRecomputedAt *time.Time        `json:"sales_recomputed_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	Entries []LedgerEntry `gorm:"foreignKey:LedgerID;constraint:OnDelete:CASCADE" json:"entries,omitempty"`
}

// MarshalJSON renders monetary fields as fixed two-decimal strings
func (l DailyLedger) MarshalJSON() ([]byte, error) {
	type Alias DailyLedger
	return json.Marshal(&struct {
		Alias
		OpeningBalance  string  `json:"opening_balance"`
		CashSales       string  `json:"cash_sales"`
		GcashSales      string  `json:"gcash_sales"`
		SplitCashSales  string  `json:"split_cash_sales"`
		SplitGcashSales string  `json:"split_gcash_sales"`
		CardSales       string  `json:"card_sales"`
		CashIn          string  `json:"cash_in"`
		CashOut         string  `json:"cash_out"`
		ExpectedBalance string  `json:"expected_balance"`
		ActualBalance   *string `json:"actual_balance"`
		Variance        *string `json:"variance"`
	}{
		Alias:           Alias(l),
		OpeningBalance:  money(l.OpeningBalance),
		CashSales:       money(l.CashSales),
		GcashSales:      money(l.GcashSales),
		SplitCashSales:  money(l.SplitCashSales),
		SplitGcashSales: money(l.SplitGcashSales),
		CardSales:       money(l.CardSales),
		CashIn:          money(l.CashIn),
		CashOut:         money(l.CashOut),
		ExpectedBalance: money(l.ExpectedBalance),
		ActualBalance:   moneyPtr(l.ActualBalance),
		Variance:        moneyPtr(l.Variance),
	})
}

func (l *DailyLedger) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (DailyLedger) TableName() string {
	return "daily_ledgers"
}

// NewDailyLedger returns an open ledger with every amount at zero
func NewDailyLedger(businessDate string, opening decimal.Decimal, openedBy uuid.UUID, at time.Time) *DailyLedger {
	l := &DailyLedger{
		BusinessDate:   businessDate,
		OpeningBalance: opening,
		Status:         enum.LedgerStatusOpen,
		OpenedAt:       at,
	}
	if openedBy != uuid.Nil {
		l.OpenedBy = &openedBy
	}
	l.Recalculate()
	return l
}

func (l *DailyLedger) IsClosed() bool {
	return l.Status == enum.LedgerStatusClosed
}

// ComputeExpectedBalance applies the drawer formula to the current fields.
// Gcash and card sales never reach the drawer.
func (l *DailyLedger) ComputeExpectedBalance() decimal.Decimal {
	return l.OpeningBalance.
		Add(l.CashSales).
		Add(l.SplitCashSales).
		Add(l.CashIn).
		Sub(l.CashOut)
}

// Recalculate refreshes ExpectedBalance from the other fields
func (l *DailyLedger) Recalculate() {
	l.ExpectedBalance = l.ComputeExpectedBalance()
}

// ApplySales replaces the sales fields with a fresh summary
func (l *DailyLedger) ApplySales(s SalesSummary, at time.Time) error {
	if l.IsClosed() {
		return ErrLedgerClosed
	}
	l.CashSales = s.Cash
	l.GcashSales = s.Gcash
	l.SplitCashSales = s.SplitCash
	l.SplitGcashSales = s.SplitGcash
	l.CardSales = s.Card
	l.OrderCount = s.Orders
	l.SalesRecomputedAt = &at
	l.Recalculate()
	return nil
}

// RecordCashFlow adds a manual movement to the cumulative totals and returns
// the audit entry that must be persisted alongside it.
func (l *DailyLedger) RecordCashFlow(flow enum.CashFlowType, amount decimal.Decimal, note string, by uuid.UUID, at time.Time) (*LedgerEntry, error) {
	if l.IsClosed() {
		return nil, ErrLedgerClosed
	}
	if !flow.IsValid() {
		return nil, fmt.Errorf("unknown cash flow type %q", flow)
	}
	if !amount.IsPositive() {
		return nil, errors.New("cash flow amount must be positive")
	}

	switch flow {
	case enum.CashFlowIn:
		l.CashIn = l.CashIn.Add(amount)
	case enum.CashFlowOut:
		l.CashOut = l.CashOut.Add(amount)
	}
	l.EntryCount++
	l.Recalculate()

	return &LedgerEntry{
		LedgerID:   l.ID,
		Position:   l.EntryCount,
		Type:       flow,
		Amount:     amount,
		Note:       note,
		RecordedBy: by,
		CreatedAt:  at,
	}, nil
}

// CarryForward replaces the opening balance with the previous day's
// counted cash
func (l *DailyLedger) CarryForward(balance decimal.Decimal) error {
	if l.IsClosed() {
		return ErrLedgerClosed
	}
	l.OpeningBalance = balance
	l.CarriedForward = true
	l.Recalculate()
	return nil
}

// Close records the physical count and freezes the ledger
func (l *DailyLedger) Close(actual decimal.Decimal, notes string, by uuid.UUID, at time.Time) error {
	if l.IsClosed() {
		return ErrLedgerClosed
	}
	l.Recalculate()
	variance := actual.Sub(l.ExpectedBalance)
	l.ActualBalance = &actual
	l.Variance = &variance
	l.VarianceNotes = notes
	l.Status = enum.LedgerStatusClosed
	l.ClosedAt = &at
	if by != uuid.Nil {
		l.ClosedBy = &by
	}
	return nil
}

// LedgerEntry is one append-only manual cash movement
type LedgerEntry struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	LedgerID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"ledger_id"`
	Position   int               `gorm:"not null" json:"position"`
	Type       enum.CashFlowType `gorm:"size:20;not null" json:"type"`
	Amount     decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"-"`
	Note       string            `gorm:"type:text;not null" json:"note"`
	RecordedBy uuid.UUID         `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (e LedgerEntry) MarshalJSON() ([]byte, error) {
	type Alias LedgerEntry
	return json.Marshal(&struct {
		Alias
		Amount string `json:"amount"`
		Line   string `json:"line"`
	}{
		Alias:  Alias(e),
		Amount: money(e.Amount),
		Line:   e.Line(),
	})
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Line renders the entry as a single audit line, e.g.
// "[2024-05-01 09:15] cash in +200.00 till refill"
func (e *LedgerEntry) Line() string {
	sign := "+"
	if e.Type == enum.CashFlowOut {
		sign = "-"
	}
	return fmt.Sprintf("[%s] %s %s%s %s",
		e.CreatedAt.Format("2006-01-02 15:04"),
		e.Type.Label(),
		sign,
		e.Amount.StringFixed(2),
		e.Note,
	)
}

// SalesSummary is the per-channel attribution of a day's completed orders
type SalesSummary struct {
	Cash       decimal.Decimal
	Gcash      decimal.Decimal
	SplitCash  decimal.Decimal
	SplitGcash decimal.Decimal
	Card       decimal.Decimal
	Orders     int64
}

// Add attributes one order to its channels. Voided and pending orders are skipped.
func (s *SalesSummary) Add(o *Order) {
	if o.Status != enum.OrderStatusCompleted {
		return
	}
	s.Orders++
	switch o.PaymentMethod {
	case enum.PaymentMethodCash:
		s.Cash = s.Cash.Add(o.Total)
	case enum.PaymentMethodGcash:
		s.Gcash = s.Gcash.Add(o.Total)
	case enum.PaymentMethodSplit:
		if o.SplitCashAmount != nil {
			s.SplitCash = s.SplitCash.Add(*o.SplitCashAmount)
		}
		if o.SplitGcashAmount != nil {
			s.SplitGcash = s.SplitGcash.Add(*o.SplitGcashAmount)
		}
	case enum.PaymentMethodDebitCard, enum.PaymentMethodCreditCard:
		s.Card = s.Card.Add(o.Total)
	}
}
