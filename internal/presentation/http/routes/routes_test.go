package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/application/service"
	"github.com/reancirl/coffee-erp-sub000/internal/config"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/database"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/metrics"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/handler"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/middleware"
	"github.com/reancirl/coffee-erp-sub000/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testServer struct {
	router  *gin.Engine
	manager string
	cashier string
	today   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(&config.DatabaseConfig{Driver: "sqlite", Path: t.TempDir() + "/pos.db"}, false, nil)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{App: config.AppConfig{Name: "coffee-pos-api"}}
	recorder := metrics.New()
	tx := repository.NewTransactor(db)

	orderService := service.NewOrderService(tx,
		repository.NewOrderRepository(db),
		repository.NewSequenceRepository(db),
		nil, recorder, nil,
		service.OrderOptions{NumberPrefix: "ORD"},
	)
	ledgerService := service.NewLedgerService(tx,
		repository.NewLedgerRepository(db),
		repository.NewSalesReader(db),
		nil, recorder, nil, time.UTC,
	)

	jwtManager := utils.NewJWTManager("routes-test", time.Hour)
	manager, err := jwtManager.GenerateAccessToken(uuid.New(), "manager@example.com", []string{"manager"},
		[]string{middleware.PermissionManageOrders, middleware.PermissionManageLedger})
	require.NoError(t, err)
	cashier, err := jwtManager.GenerateAccessToken(uuid.New(), "cashier@example.com", []string{"cashier"},
		[]string{middleware.PermissionManageOrders})
	require.NoError(t, err)

	router := Setup(&Handlers{
		Order:  handler.NewOrderHandler(orderService),
		Ledger: handler.NewLedgerHandler(ledgerService),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repository.NewIdempotencyRepository(db),
		Metrics:         recorder,
	})

	return &testServer{router: router, manager: manager, cashier: cashier, today: ledgerService.Today()}
}

func (s *testServer) do(t *testing.T, method, path, token, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

const splitOrderBody = `{
	"payment_method": "split",
	"order_type": "dine_in",
	"table_number": "T2",
	"split_cash_amount": "70.00",
	"split_gcash_amount": 50,
	"items": [{
		"product_id": "latte",
		"product_name": "Cafe Latte",
		"variant": "iced",
		"quantity": 1,
		"unit_price": "100.00",
		"customizations": {"sugar": "less", "ice": "light"},
		"add_ons": [{"product_name": "Extra Shot", "unit_price": 20}]
	}]
}`

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pos_http_request_duration_seconds")
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/orders", s.cashier, splitOrderBody, middleware.IdempotencyKeyHeader, "till-1-42")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order struct {
		ID          string `json:"id"`
		OrderNumber string `json:"order_number"`
		Subtotal    string `json:"subtotal"`
		Total       string `json:"total"`
		SplitCash   string `json:"split_cash_amount"`
		Status      string `json:"status"`
		Items       []struct {
			LineTotal      string          `json:"line_total"`
			Customizations json.RawMessage `json:"customizations"`
			AddOns         []struct {
				Quantity int `json:"quantity"`
			} `json:"add_ons"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "ORD-000001", order.OrderNumber)
	assert.Equal(t, "120.00", order.Subtotal)
	assert.Equal(t, "120.00", order.Total)
	assert.Equal(t, "70.00", order.SplitCash)
	assert.Equal(t, "completed", order.Status)
	require.Len(t, order.Items, 1)
	assert.JSONEq(t, `{"sugar":"less","ice":"light"}`, string(order.Items[0].Customizations))
	assert.Equal(t, `{"sugar":"less","ice":"light"}`, string(order.Items[0].Customizations), "key order is kept")
	assert.Equal(t, 1, order.Items[0].AddOns[0].Quantity)

	// a retry with the same key replays instead of ringing up a second order
	w, env = s.do(t, http.MethodPost, "/api/v1/orders", s.cashier, splitOrderBody, middleware.IdempotencyKeyHeader, "till-1-42")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.IdempotencyReplayedHeader))

	w, env = s.do(t, http.MethodGet, "/api/v1/orders", s.cashier, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Pagination.Total)

	w, _ = s.do(t, http.MethodGet, "/api/v1/orders/"+order.ID, s.cashier, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/void", s.cashier, `{"reason":"customer left"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/void", s.cashier, `{"reason":"again"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Order is already voided", env.Message)

	w, _ = s.do(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), s.cashier, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid", s.cashier, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (s *testServer) createOrder(t *testing.T) string {
	t.Helper()
	w, env := s.do(t, http.MethodPost, "/api/v1/orders", s.cashier, splitOrderBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	return order.ID
}

func (s *testServer) orderStatus(t *testing.T, id string) string {
	t.Helper()
	w, env := s.do(t, http.MethodGet, "/api/v1/orders/"+id, s.cashier, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	return order.Status
}

func TestVoidReasonIsOptional(t *testing.T) {
	s := newTestServer(t)

	bare := s.createOrder(t)
	w, _ := s.do(t, http.MethodPost, "/api/v1/orders/"+bare+"/void", s.cashier, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "voided", s.orderStatus(t, bare))

	empty := s.createOrder(t)
	w, _ = s.do(t, http.MethodPost, "/api/v1/orders/"+empty+"/void", s.cashier, `{}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "voided", s.orderStatus(t, empty))

	long := s.createOrder(t)
	w, _ = s.do(t, http.MethodPost, "/api/v1/orders/"+long+"/void", s.cashier, `{"reason":"`+strings.Repeat("x", 256)+`"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "completed", s.orderStatus(t, long))
}

func TestVoidIdempotencyKeyDoesNotCrossOrders(t *testing.T) {
	s := newTestServer(t)
	first := s.createOrder(t)
	second := s.createOrder(t)

	w, _ := s.do(t, http.MethodPost, "/api/v1/orders/"+first+"/void", s.cashier, `{"reason":"spilled"}`,
		middleware.IdempotencyKeyHeader, "void-k1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/api/v1/orders/"+second+"/void", s.cashier, `{"reason":"spilled"}`,
		middleware.IdempotencyKeyHeader, "void-k1")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, w.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.Equal(t, "completed", s.orderStatus(t, second))
	assert.Equal(t, "voided", s.orderStatus(t, first))
}

func TestOrderValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"malformed json", `{"items": [`, http.StatusBadRequest, ""},
		{"missing items", `{"payment_method":"cash"}`, http.StatusUnprocessableEntity, "items"},
		{"missing unit price", `{"payment_method":"cash","items":[{"product_name":"Mocha","quantity":1}]}`, http.StatusUnprocessableEntity, "items[0].unit_price"},
		{"negative price", `{"payment_method":"cash","items":[{"product_name":"Mocha","quantity":1,"unit_price":-1}]}`, http.StatusUnprocessableEntity, "items[0].unit_price"},
		{"zero quantity", `{"payment_method":"cash","items":[{"product_name":"Mocha","quantity":0,"unit_price":90}]}`, http.StatusUnprocessableEntity, "items[0].quantity"},
		{"split off by more than a cent", `{"payment_method":"split","split_cash_amount":10,"split_gcash_amount":10,"items":[{"product_name":"Mocha","quantity":1,"unit_price":90}]}`, http.StatusUnprocessableEntity, "split_cash_amount"},
		{"unknown method", `{"payment_method":"cheque","items":[{"product_name":"Mocha","quantity":1,"unit_price":90}]}`, http.StatusUnprocessableEntity, "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, http.MethodPost, "/api/v1/orders", s.cashier, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.field != "" {
				var fields []string
				for _, e := range env.Errors {
					fields = append(fields, e.Field)
				}
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestLedgerLifecycle(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/ledgers/"+s.today, s.cashier, "")
	assert.Equal(t, http.StatusForbidden, w.Code, "cashiers cannot touch the drawer ledger")

	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers", s.manager, `{"date":"today","opening_balance":"500"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/api/v1/orders", s.cashier, splitOrderBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers/today/cash-flows", s.manager, `{"type":"cash_in","amount":"200","note":"till refill"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers/today/cash-flows", s.manager, `{"type":"cash_out","amount":"50","note":"change fund"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers/today/cash-flows", s.manager, `{"type":"tip","amount":"5","note":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/v1/ledgers/today/recompute", s.manager, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var ledger struct {
		BusinessDate    string  `json:"business_date"`
		SplitCashSales  string  `json:"split_cash_sales"`
		SplitGcashSales string  `json:"split_gcash_sales"`
		ExpectedBalance string  `json:"expected_balance"`
		ActualBalance   *string `json:"actual_balance"`
		Variance        *string `json:"variance"`
		Status          string  `json:"status"`
		Entries         []struct {
			Line string `json:"line"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ledger))
	assert.Equal(t, s.today, ledger.BusinessDate)
	assert.Equal(t, "70.00", ledger.SplitCashSales)
	assert.Equal(t, "50.00", ledger.SplitGcashSales)
	assert.Equal(t, "720.00", ledger.ExpectedBalance)
	assert.Nil(t, ledger.ActualBalance)
	require.Len(t, ledger.Entries, 2)
	assert.Contains(t, ledger.Entries[1].Line, "cash out -50.00 change fund")

	w, env = s.do(t, http.MethodPost, "/api/v1/ledgers/today/close", s.manager, `{"actual_balance":"715","variance_notes":"coins short"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &ledger))
	assert.Equal(t, "closed", ledger.Status)
	require.NotNil(t, ledger.Variance)
	assert.Equal(t, "-5.00", *ledger.Variance)

	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers/today/close", s.manager, `{"actual_balance":"720"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/ledgers/today/cash-flows", s.manager, `{"type":"cash_in","amount":"1","note":"late"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = s.do(t, http.MethodPatch, "/api/v1/ledgers/today/variance-notes", s.manager, `{"variance_notes":"found 5.00 under the till"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/ledgers/2024-02-30", s.manager, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/ledgers?status=closed", s.manager, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/orders", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}
