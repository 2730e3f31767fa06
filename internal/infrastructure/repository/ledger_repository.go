package repository

import (
	"context"

	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	domainRepo "github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new daily ledger repository
func NewLedgerRepository(db *gorm.DB) domainRepo.LedgerRepository {
	return &ledgerRepository{db: db}
}

func onConflictDoNothing() clause.OnConflict {
	return clause.OnConflict{DoNothing: true}
}

func (r *ledgerRepository) CreateIfAbsent(ctx context.Context, ledger *entity.DailyLedger) (bool, error) {
	res := conn(ctx, r.db).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "business_date"}},
			DoNothing: true,
		}).
		Create(ledger)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetByDate and GetByDateForUpdate use Find, since a missing ledger is the
// normal case on first access and First would log it as an error.
func (r *ledgerRepository) GetByDate(ctx context.Context, businessDate string) (*entity.DailyLedger, error) {
	var ledger entity.DailyLedger
	res := conn(ctx, r.db).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("business_date = ?", businessDate).
		Limit(1).
		Find(&ledger)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &ledger, nil
}

func (r *ledgerRepository) GetByDateForUpdate(ctx context.Context, businessDate string) (*entity.DailyLedger, error) {
	var ledger entity.DailyLedger
	res := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_date = ?", businessDate).
		Limit(1).
		Find(&ledger)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &ledger, nil
}

func (r *ledgerRepository) Update(ctx context.Context, ledger *entity.DailyLedger) error {
	return conn(ctx, r.db).Omit(clause.Associations).Save(ledger).Error
}

func (r *ledgerRepository) AddEntry(ctx context.Context, entry *entity.LedgerEntry) error {
	return conn(ctx, r.db).Create(entry).Error
}

func (r *ledgerRepository) List(ctx context.Context, params *domainRepo.LedgerFilterParams) ([]entity.DailyLedger, int64, error) {
	var ledgers []entity.DailyLedger
	var total int64

	query := conn(ctx, r.db).Model(&entity.DailyLedger{}).
		Scopes(BusinessDateBetween(params.From, params.To))
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(Paginate(params.Pagination)).
		Order("business_date DESC").
		Find(&ledgers).Error

	return ledgers, total, err
}
