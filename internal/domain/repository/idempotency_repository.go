package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by client key and user.
// A key is reserved before the request runs, then completed with the response
// or released when the request fails.
type IdempotencyRepository interface {
	// GetByKey returns nil when the key was never stored or has expired
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve stores a pending key. It reports false when the key is already
	// held by another request, pending or completed.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete attaches the response to a reserved key
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a pending reservation so the key can be retried
	Release(ctx context.Context, key string, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}
