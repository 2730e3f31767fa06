package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/domain/entity"
	domainRepo "github.com/reancirl/coffee-erp-sub000/internal/domain/repository"
)

const idempotencyPrefix = "idempotency:"

type idempotencyStore struct {
	rdb redis.UniversalClient
	now func() time.Time
}

// NewIdempotencyStore keeps replayable responses in redis. Expiry is delegated
// to key TTLs.
func NewIdempotencyStore(rdb redis.UniversalClient) domainRepo.IdempotencyRepository {
	return &idempotencyStore{rdb: rdb, now: time.Now}
}

func idempotencyKey(key string, userID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", idempotencyPrefix, userID, key)
}

func (s *idempotencyStore) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	val, err := s.rdb.Get(ctx, idempotencyKey(key, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var ikey entity.IdempotencyKey
	if err := json.Unmarshal(val, &ikey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency key: %w", err)
	}
	if s.now().After(ikey.ExpiresAt) {
		return nil, nil
	}
	return &ikey, nil
}

func (s *idempotencyStore) encode(ikey *entity.IdempotencyKey) ([]byte, time.Duration, error) {
	now := s.now()
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = now
	}
	data, err := json.Marshal(ikey)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal idempotency key: %w", err)
	}
	return data, ikey.ExpiresAt.Sub(now), nil
}

// Reserve uses SETNX, so of two racing requests only one gets the key
func (s *idempotencyStore) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	data, ttl, err := s.encode(ikey)
	if err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, nil
	}
	ok, err := s.rdb.SetNX(ctx, idempotencyKey(ikey.Key, ikey.UserID), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	data, ttl, err := s.encode(ikey)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return s.Release(ctx, ikey.Key, ikey.UserID)
	}
	return s.rdb.Set(ctx, idempotencyKey(ikey.Key, ikey.UserID), data, ttl).Err()
}

func (s *idempotencyStore) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return s.rdb.Del(ctx, idempotencyKey(key, userID)).Err()
}

func (s *idempotencyStore) DeleteExpired(context.Context) error {
	return nil
}
