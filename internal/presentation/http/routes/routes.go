package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/reancirl/coffee-erp-sub000/internal/config"
	domainRepo "github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/metrics"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/handler"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/middleware"
	"github.com/reancirl/coffee-erp-sub000/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order  *handler.OrderHandler
	Ledger *handler.LedgerHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Metrics         *metrics.Recorder
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.Recovery(log))
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:     deps.IdempotencyRepo,
			Required: deps.Cfg.POS.RequireIdempotencyKey,
			Log:      log,
		}))

		registerOrderRoutes(protected, h)
		registerLedgerRoutes(protected, h)
	}

	return router
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers) {
	orders := protected.Group("/orders")
	orders.Use(middleware.RequirePermission(middleware.PermissionManageOrders))
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/void", h.Order.Void)
	}
}

func registerLedgerRoutes(protected *gin.RouterGroup, h *Handlers) {
	ledgers := protected.Group("/ledgers")
	ledgers.Use(middleware.RequirePermission(middleware.PermissionManageLedger))
	{
		ledgers.GET("", h.Ledger.List)
		ledgers.POST("", h.Ledger.Open)
		ledgers.GET("/:date", h.Ledger.Get)
		ledgers.POST("/:date/recompute", h.Ledger.Recompute)
		ledgers.POST("/:date/cash-flows", h.Ledger.RecordCashFlow)
		ledgers.POST("/:date/close", h.Ledger.Close)
		ledgers.PATCH("/:date/variance-notes", h.Ledger.UpdateVarianceNotes)
	}
}
