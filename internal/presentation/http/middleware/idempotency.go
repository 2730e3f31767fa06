package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/dto/response"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
	// IdempotencyKeyTTL is how long a stored response can be replayed
	IdempotencyKeyTTL = 24 * time.Hour
	// idempotencyPendingTTL bounds how long a crashed request can hold its key
	idempotencyPendingTTL = 2 * time.Minute
	maxIdempotencyKey = 255
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	// Required rejects POST requests that carry no key
	Required bool
	Log      *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a register resubmits a request
// with a key it has already used, so a retry after a dropped connection does
// not ring a sale up twice. The key is reserved before the handler runs, so a
// concurrent duplicate gets 409 instead of a second sale. Only successful
// responses are kept; a failed request frees its key for the next attempt.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			if cfg.Required && method == http.MethodPost {
				response.BadRequest(c, IdempotencyKeyHeader+" header is required for this request")
				c.Abort()
				return
			}
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			response.BadRequest(c, IdempotencyKeyHeader+" header is too long")
			c.Abort()
			return
		}

		value, _ := c.Get("user_id")
		userID, ok := value.(uuid.UUID)
		if !ok {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		// the concrete path, so a key reused on another order or date is refused
		endpoint := method + " " + c.Request.URL.Path

		existing, err := cfg.Repo.GetByKey(ctx, key, userID)
		if err != nil {
			log.Error("failed to check idempotency key", zap.String("key", key), zap.Error(err))
			response.InternalServerError(c, "Failed to check idempotency key")
			c.Abort()
			return
		}
		if existing == nil {
			reserved, err := cfg.Repo.Reserve(ctx, &entity.IdempotencyKey{
				Key:       key,
				UserID:    userID,
				Endpoint:  endpoint,
				ExpiresAt: time.Now().Add(idempotencyPendingTTL),
			})
			if err != nil {
				log.Error("failed to reserve idempotency key", zap.String("key", key), zap.Error(err))
				response.InternalServerError(c, "Failed to check idempotency key")
				c.Abort()
				return
			}
			if !reserved {
				// lost the race to a concurrent request with the same key
				if existing, err = cfg.Repo.GetByKey(ctx, key, userID); err != nil || existing == nil {
					existing = &entity.IdempotencyKey{Endpoint: endpoint}
				}
			}
		}
		if existing != nil {
			replayStored(c, existing, endpoint)
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			if err := cfg.Repo.Release(ctx, key, userID); err != nil {
				log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
			}
			return
		}

		ikey := &entity.IdempotencyKey{
			Key:          key,
			UserID:       userID,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
		}
		if err := cfg.Repo.Complete(ctx, ikey); err != nil {
			log.Warn("failed to store idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}

func replayStored(c *gin.Context, existing *entity.IdempotencyKey, endpoint string) {
	defer c.Abort()
	switch {
	case existing.Endpoint != endpoint:
		response.ErrorWithCode(c, http.StatusUnprocessableEntity, IdempotencyKeyHeader+" was already used for another request")
	case existing.IsPending():
		response.ErrorWithCode(c, http.StatusConflict, "A request with this "+IdempotencyKeyHeader+" is still being processed")
	default:
		c.Header(IdempotencyReplayedHeader, "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
	}
}
