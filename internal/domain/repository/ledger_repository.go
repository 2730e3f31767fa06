package repository

import (
	"context"

	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/pkg/pagination"
)

// LedgerRepository defines the interface for daily ledger data operations
type LedgerRepository interface {
	// CreateIfAbsent inserts the ledger unless one already exists for its
	// business date, reporting whether this call created it.
	CreateIfAbsent(ctx context.Context, ledger *entity.DailyLedger) (bool, error)
	// GetByDate loads a ledger with its entries in recorded order
	GetByDate(ctx context.Context, businessDate string) (*entity.DailyLedger, error)
	// GetByDateForUpdate loads a ledger row and locks it for the rest of the
	// surrounding transaction. Entries are not loaded.
	GetByDateForUpdate(ctx context.Context, businessDate string) (*entity.DailyLedger, error)
	Update(ctx context.Context, ledger *entity.DailyLedger) error
	AddEntry(ctx context.Context, entry *entity.LedgerEntry) error
	List(ctx context.Context, params *LedgerFilterParams) ([]entity.DailyLedger, int64, error)
}

// LedgerFilterParams contains filtering parameters for ledger history
type LedgerFilterParams struct {
	Pagination *pagination.PaginationParams
	Status     *enum.LedgerStatus
	From       string
	To         string
}
