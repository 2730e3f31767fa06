package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/pricing"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/events"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/metrics"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
	"github.com/reancirl/coffee-erp-sub000/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errLedgerClosedConflict = apperror.NewConflictError("Ledger is already closed")

// LedgerService reconciles the cash drawer one business date at a time.
// Every mutation runs in a transaction holding the ledger row lock.
type LedgerService struct {
	tx         repository.Transactor
	ledgerRepo repository.LedgerRepository
	sales      repository.SalesReader
	publisher  events.Publisher
	metrics    *metrics.Recorder
	log        *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	tx repository.Transactor,
	ledgerRepo repository.LedgerRepository,
	sales repository.SalesReader,
	publisher events.Publisher,
	recorder *metrics.Recorder,
	log *zap.Logger,
	loc *time.Location,
) *LedgerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		tx:         tx,
		ledgerRepo: ledgerRepo,
		sales:      sales,
		publisher:  publisher,
		metrics:    recorder,
		log:        log,
		loc:        loc,
		now:        time.Now,
	}
}

// Today is the current business date in the café's timezone
func (s *LedgerService) Today() string {
	return utils.FormatBusinessDate(s.now(), s.loc)
}

func parseDate(date string) (string, error) {
	d, err := utils.ParseBusinessDate(date)
	if err != nil {
		return "", apperror.NewFieldError("date", "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// GetOrCreateLedger returns the ledger for date, creating it on first access.
// An open ledger has its sales refreshed from the orders before it is returned.
func (s *LedgerService) GetOrCreateLedger(ctx context.Context, date string, actor uuid.UUID) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ledger, created, err := s.ensureLedger(ctx, date, actor)
		if err != nil {
			return err
		}
		if created || ledger.IsClosed() {
			return nil
		}
		return s.refreshSales(ctx, ledger)
	})
	if err != nil {
		return nil, s.fail("get ledger", date, err)
	}
	return s.load(ctx, date)
}

// OpenLedger creates the ledger for date with an explicit opening balance.
// It is refused when the ledger exists or when the previous day is closed,
// since that day's counted cash is the opening balance.
func (s *LedgerService) OpenLedger(ctx context.Context, date string, opening decimal.Decimal, actor uuid.UUID) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if err := checkBalance("opening_balance", opening); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.ledgerRepo.GetByDateForUpdate(ctx, date)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflictError("Ledger already exists for " + date)
		}

		prev, err := s.previousLedger(ctx, date)
		if err != nil {
			return err
		}
		if prev != nil && prev.IsClosed() {
			return apperror.NewConflictError("Opening balance is carried forward from " + prev.BusinessDate)
		}

		ledger := entity.NewDailyLedger(date, opening, actor, s.now())
		created, err := s.ledgerRepo.CreateIfAbsent(ctx, ledger)
		if err != nil {
			return err
		}
		if !created {
			return apperror.NewConflictError("Ledger already exists for " + date)
		}

		ledger, err = s.lock(ctx, date)
		if err != nil {
			return err
		}
		return s.refreshSales(ctx, ledger)
	})
	if err != nil {
		return nil, s.fail("open ledger", date, err)
	}

	s.log.Info("ledger opened", zap.String("business_date", date), zap.String("opening_balance", opening.StringFixed(2)))
	return s.load(ctx, date)
}

// RecomputeSales replaces the sales fields of an open ledger with a fresh
// aggregation of the date's completed orders. On failure nothing changes.
func (s *LedgerService) RecomputeSales(ctx context.Context, date string, actor uuid.UUID) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ledger, created, err := s.ensureLedger(ctx, date, actor)
		if err != nil {
			return err
		}
		if ledger.IsClosed() {
			return errLedgerClosedConflict
		}
		if created {
			return nil
		}
		return s.refreshSales(ctx, ledger)
	})
	if err != nil {
		return nil, s.fail("recompute sales", date, err)
	}
	return s.load(ctx, date)
}

// CashFlowInput is a manual drawer movement
type CashFlowInput struct {
	Type       enum.CashFlowType
	Amount     decimal.Decimal
	Note       string
	RecordedBy uuid.UUID
}

func (in *CashFlowInput) validate() error {
	var errs []apperror.FieldError
	if !in.Type.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "type", Message: "must be cash_in or cash_out"})
	}
	switch {
	case !in.Amount.IsPositive():
		errs = append(errs, apperror.FieldError{Field: "amount", Message: "must be greater than 0"})
	case !pricing.HasCents(in.Amount):
		errs = append(errs, apperror.FieldError{Field: "amount", Message: "must have at most 2 decimal places"})
	}
	if strings.TrimSpace(in.Note) == "" {
		errs = append(errs, apperror.FieldError{Field: "note", Message: "is required"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// RecordCashFlow appends a cash in or cash out entry to an open ledger
func (s *LedgerService) RecordCashFlow(ctx context.Context, date string, input *CashFlowInput) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	input.Note = strings.TrimSpace(input.Note)
	if err := input.validate(); err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ledger, _, err := s.ensureLedger(ctx, date, input.RecordedBy)
		if err != nil {
			return err
		}
		entry, err := ledger.RecordCashFlow(input.Type, input.Amount, input.Note, input.RecordedBy, s.now())
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.AddEntry(ctx, entry); err != nil {
			return err
		}
		return s.ledgerRepo.Update(ctx, ledger)
	})
	if err != nil {
		return nil, s.fail("record cash flow", date, err)
	}

	s.log.Info("cash flow recorded",
		zap.String("business_date", date),
		zap.String("type", string(input.Type)),
		zap.String("amount", input.Amount.StringFixed(2)),
	)
	return s.load(ctx, date)
}

// CloseLedgerInput is the end-of-day physical count
type CloseLedgerInput struct {
	ActualBalance decimal.Decimal
	VarianceNotes string
	ClosedBy      uuid.UUID
}

// CloseLedger refreshes sales, records the counted cash and freezes the
// ledger. A closed ledger cannot be closed again.
func (s *LedgerService) CloseLedger(ctx context.Context, date string, input *CloseLedgerInput) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	if err := checkBalance("actual_balance", input.ActualBalance); err != nil {
		return nil, err
	}

	var carriedTo string
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ledger, created, err := s.ensureLedger(ctx, date, input.ClosedBy)
		if err != nil {
			return err
		}
		if ledger.IsClosed() {
			return errLedgerClosedConflict
		}
		if !created {
			if err := s.applySales(ctx, ledger); err != nil {
				return err
			}
		}
		if err := ledger.Close(input.ActualBalance, strings.TrimSpace(input.VarianceNotes), input.ClosedBy, s.now()); err != nil {
			return err
		}
		if err := s.ledgerRepo.Update(ctx, ledger); err != nil {
			return err
		}
		carriedTo, err = s.carryForward(ctx, date, input.ActualBalance)
		return err
	})
	if err != nil {
		return nil, s.fail("close ledger", date, err)
	}

	ledger, err := s.load(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.LedgerClosed, events.NewLedgerPayload(ledger)); err != nil {
		s.log.Warn("failed to publish ledger event", zap.String("business_date", date), zap.Error(err))
	}
	if ledger.Variance != nil {
		s.metrics.LedgerClosed(ledger.Variance.InexactFloat64())
	}
	s.log.Info("ledger closed",
		zap.String("business_date", date),
		zap.String("expected_balance", ledger.ExpectedBalance.StringFixed(2)),
		zap.String("actual_balance", input.ActualBalance.StringFixed(2)),
	)
	if carriedTo != "" {
		s.log.Info("opening balance carried forward",
			zap.String("business_date", carriedTo),
			zap.String("opening_balance", input.ActualBalance.StringFixed(2)),
		)
	}
	return ledger, nil
}

// UpdateVarianceNotes replaces the variance explanation. It is the only
// change a closed ledger accepts.
func (s *LedgerService) UpdateVarianceNotes(ctx context.Context, date, notes string) (*entity.DailyLedger, error) {
	date, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ledger, err := s.ledgerRepo.GetByDateForUpdate(ctx, date)
		if err != nil {
			return err
		}
		if ledger == nil {
			return apperror.NewNotFoundError("Ledger")
		}
		ledger.VarianceNotes = strings.TrimSpace(notes)
		return s.ledgerRepo.Update(ctx, ledger)
	})
	if err != nil {
		return nil, s.fail("update variance notes", date, err)
	}
	return s.load(ctx, date)
}

// ListLedgers returns a page of ledgers, newest date first
func (s *LedgerService) ListLedgers(ctx context.Context, params *repository.LedgerFilterParams) (*pagination.PaginatedResult[entity.DailyLedger], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	if params.From != "" {
		if _, err := utils.ParseBusinessDate(params.From); err != nil {
			return nil, apperror.NewFieldError("from", "must be a date in YYYY-MM-DD format")
		}
	}
	if params.To != "" {
		if _, err := utils.ParseBusinessDate(params.To); err != nil {
			return nil, apperror.NewFieldError("to", "must be a date in YYYY-MM-DD format")
		}
	}

	ledgers, total, err := s.ledgerRepo.List(ctx, params)
	if err != nil {
		s.log.Error("failed to list ledgers", zap.Error(err))
		return nil, apperror.NewInternalError("Failed to list ledgers")
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(ledgers, pag), nil
}

// ensureLedger returns the locked ledger for date, creating it when absent.
// A new ledger opens with the previous day's counted cash if that day is
// closed, otherwise zero, and has its sales computed straight away.
// Must run inside a transaction.
func (s *LedgerService) ensureLedger(ctx context.Context, date string, actor uuid.UUID) (*entity.DailyLedger, bool, error) {
	ledger, err := s.ledgerRepo.GetByDateForUpdate(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if ledger != nil {
		return ledger, false, nil
	}

	opening := decimal.Zero
	prev, err := s.previousLedger(ctx, date)
	if err != nil {
		return nil, false, err
	}
	carried := prev != nil && prev.IsClosed() && prev.ActualBalance != nil
	if carried {
		opening = *prev.ActualBalance
	}

	fresh := entity.NewDailyLedger(date, opening, actor, s.now())
	fresh.CarriedForward = carried
	created, err := s.ledgerRepo.CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, false, err
	}

	// whoever won the insert, continue with the stored row under lock
	ledger, err = s.lock(ctx, date)
	if err != nil {
		return nil, false, err
	}
	if created {
		if err := s.refreshSales(ctx, ledger); err != nil {
			return nil, false, err
		}
		s.log.Info("ledger created",
			zap.String("business_date", date),
			zap.String("opening_balance", opening.StringFixed(2)),
			zap.Bool("carried_forward", carried),
		)
	}
	return ledger, created, nil
}

// carryForward opens the next day with the counted cash when that ledger was
// created before this day closed. It returns the next date when it changed.
// A next day that is closed or already carried forward is left alone.
func (s *LedgerService) carryForward(ctx context.Context, date string, actual decimal.Decimal) (string, error) {
	nextDate, err := utils.NextBusinessDate(date)
	if err != nil {
		return "", err
	}
	next, err := s.ledgerRepo.GetByDateForUpdate(ctx, nextDate)
	if err != nil || next == nil {
		return "", err
	}
	if next.IsClosed() || next.CarriedForward {
		return "", nil
	}
	if err := next.CarryForward(actual); err != nil {
		return "", err
	}
	if err := s.ledgerRepo.Update(ctx, next); err != nil {
		return "", err
	}
	return nextDate, nil
}

func (s *LedgerService) previousLedger(ctx context.Context, date string) (*entity.DailyLedger, error) {
	prevDate, err := utils.PreviousBusinessDate(date)
	if err != nil {
		return nil, err
	}
	return s.ledgerRepo.GetByDateForUpdate(ctx, prevDate)
}

func (s *LedgerService) lock(ctx context.Context, date string) (*entity.DailyLedger, error) {
	ledger, err := s.ledgerRepo.GetByDateForUpdate(ctx, date)
	if err != nil {
		return nil, err
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger %s vanished after insert", date)
	}
	return ledger, nil
}

// applySales loads the date's sales into ledger without saving it
func (s *LedgerService) applySales(ctx context.Context, ledger *entity.DailyLedger) error {
	summary, err := s.sales.SummarizeSales(ctx, ledger.BusinessDate)
	if err != nil {
		return fmt.Errorf("summarize sales: %w", err)
	}
	return ledger.ApplySales(*summary, s.now())
}

func (s *LedgerService) refreshSales(ctx context.Context, ledger *entity.DailyLedger) error {
	if err := s.applySales(ctx, ledger); err != nil {
		return err
	}
	return s.ledgerRepo.Update(ctx, ledger)
}

func (s *LedgerService) load(ctx context.Context, date string) (*entity.DailyLedger, error) {
	ledger, err := s.ledgerRepo.GetByDate(ctx, date)
	if err != nil {
		s.log.Error("failed to load ledger", zap.String("business_date", date), zap.Error(err))
		return nil, apperror.NewInternalError("Failed to load ledger")
	}
	if ledger == nil {
		return nil, apperror.NewNotFoundError("Ledger")
	}
	return ledger, nil
}

// fail passes client errors through and hides everything else behind a 500
func (s *LedgerService) fail(op, date string, err error) error {
	if errors.Is(err, entity.ErrLedgerClosed) {
		return errLedgerClosedConflict
	}
	if apperror.IsAppError(err) {
		return err
	}
	s.log.Error("ledger operation failed",
		zap.String("operation", op),
		zap.String("business_date", date),
		zap.Error(err),
	)
	return apperror.NewInternalError("Failed to " + op)
}

func checkBalance(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apperror.NewFieldError(field, "must not be negative")
	}
	if !pricing.HasCents(d) {
		return apperror.NewFieldError(field, "must have at most 2 decimal places")
	}
	return nil
}
