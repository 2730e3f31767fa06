package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/config"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/enum"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/database"
	infraRepo "github.com/reancirl/coffee-erp-sub000/internal/infrastructure/repository"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testClock = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	orders  *OrderService
	ledgers *LedgerService
	sales   *flakySales
}

// flakySales fails on demand so rollback behaviour can be observed
type flakySales struct {
	repository.SalesReader
	fail bool
}

func (f *flakySales) SummarizeSales(ctx context.Context, date string) (*entity.SalesSummary, error) {
	if f.fail {
		return nil, errors.New("orders table unavailable")
	}
	return f.SalesReader.SummarizeSales(ctx, date)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(&config.DatabaseConfig{
		Driver: "sqlite",
		Path:   t.TempDir() + "/pos.db",
	}, false, nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	tx := infraRepo.NewTransactor(db)
	sales := &flakySales{SalesReader: infraRepo.NewSalesReader(db)}

	orders := NewOrderService(tx,
		infraRepo.NewOrderRepository(db),
		infraRepo.NewSequenceRepository(db),
		nil, nil, nil,
		OrderOptions{NumberPrefix: "ORD"},
	)
	orders.now = func() time.Time { return testClock }

	ledgers := NewLedgerService(tx, infraRepo.NewLedgerRepository(db), sales, nil, nil, nil, time.UTC)
	ledgers.now = func() time.Time { return testClock }

	return &fixture{db: db, orders: orders, ledgers: ledgers, sales: sales}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

func appCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperror.IsAppError(err), "expected AppError, got %v", err)
	return apperror.GetAppError(err).Code
}

// latteOrder is one 100.00 latte with a 20.00 extra shot
func latteOrder(method enum.PaymentMethod) *CreateOrderInput {
	return &CreateOrderInput{
		CashierID:     uuid.New(),
		OrderType:     "dine_in",
		TableNumber:   "T1",
		PaymentMethod: method,
		Items: []OrderItemInput{{
			ProductID:      "latte",
			ProductName:    "Cafe Latte",
			Variant:        "hot",
			Customizations: entity.Customizations{{Key: "milk", Value: "oat"}, {Key: "sugar", Value: "less"}},
			Quantity:       1,
			UnitPrice:      dec("100"),
			AddOns: []AddOnInput{{
				ProductID:   "shot",
				ProductName: "Extra Shot",
				UnitPrice:   dec("20"),
			}},
		}},
	}
}

func splitLatteOrder(cash, gcash string) *CreateOrderInput {
	in := latteOrder(enum.PaymentMethodSplit)
	in.SplitCashAmount = decPtr(cash)
	in.SplitGcashAmount = decPtr(gcash)
	return in
}
