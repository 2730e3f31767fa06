package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/reancirl/coffee-erp-sub000/internal/application/service"
	"github.com/reancirl/coffee-erp-sub000/internal/config"
	domainRepo "github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/cache"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/database"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/events"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/metrics"
	"github.com/reancirl/coffee-erp-sub000/internal/infrastructure/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/logger"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/handler"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/middleware"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/routes"
	"github.com/reancirl/coffee-erp-sub000/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewDB(&cfg.Database, cfg.App.Debug, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	recorder := metrics.New()
	publisher := newPublisher(cfg, zlog)
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idempotencyRepo := newIdempotencyRepo(ctx, cfg, db, zlog)

	// Initialize repositories
	tx := repository.NewTransactor(db)
	orderRepo := repository.NewOrderRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	salesReader := repository.NewSalesReader(db)

	// Initialize services
	location := cfg.POS.Location()
	orderService := service.NewOrderService(tx, orderRepo, sequenceRepo, publisher, recorder, zlog, service.OrderOptions{
		NumberPrefix: cfg.POS.OrderNumberPrefix,
		VoidPinHash:  cfg.POS.VoidPinHash,
		Location:     location,
	})
	ledgerService := service.NewLedgerService(tx, ledgerRepo, salesReader, publisher, recorder, zlog, location)

	rateLimiter := middleware.NewUserRateLimiter(middleware.NewRateLimiterConfig(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	defer rateLimiter.Stop()

	router := routes.Setup(&routes.Handlers{
		Order:  handler.NewOrderHandler(orderService),
		Ledger: handler.NewLedgerHandler(ledgerService),
	}, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         recorder,
		Logger:          zlog,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		zlog.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env),
			zap.String("timezone", location.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

func newPublisher(cfg *config.Config, zlog *zap.Logger) events.Publisher {
	if cfg.RabbitMQ.URL == "" {
		zlog.Info("RABBITMQ_URL not set, order and ledger events are disabled")
		return events.NopPublisher{}
	}
	publisher, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		zlog.Warn("failed to connect to rabbitmq, events are disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	return publisher
}

func newIdempotencyRepo(ctx context.Context, cfg *config.Config, db *gorm.DB, zlog *zap.Logger) domainRepo.IdempotencyRepository {
	if cfg.POS.IdempotencyStore == "redis" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		return cache.NewIdempotencyStore(rdb)
	}

	repo := repository.NewIdempotencyRepository(db)
	go purgeIdempotencyKeys(ctx, repo, zlog)
	return repo
}

// purgeIdempotencyKeys drops expired keys from the database store every hour
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, zlog *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				zlog.Warn("failed to purge idempotency keys", zap.Error(err))
			}
		}
	}
}
