package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "revoked:"

// RedisRevocationRepository keeps the token revocation list in Redis,
// one key per user with a TTL matching the entry expiry. Expired entries
// disappear on their own, so DeleteExpired has nothing to reclaim.
type RedisRevocationRepository struct {
	client *redis.Client
}

func NewRedisRevocationRepository(client *redis.Client) *RedisRevocationRepository {
	return &RedisRevocationRepository{client: client}
}

func (r *RedisRevocationRepository) Insert(ctx context.Context, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	key := revocationKeyPrefix + userID

	// Never shorten an existing revocation: keep the later expiry.
	current, err := r.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if err == nil {
		existing, parseErr := time.Parse(time.RFC3339Nano, current)
		if parseErr == nil && existing.After(expiresAt) {
			return nil
		}
	}

	return r.client.Set(ctx, key, expiresAt.Format(time.RFC3339Nano), ttl).Err()
}

func (r *RedisRevocationRepository) Exists(ctx context.Context, userID string, now time.Time) (bool, error) {
	value, err := r.client.Get(ctx, revocationKeyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		// Unparseable entry: treat as revoked until it expires out.
		return true, nil
	}
	return expiresAt.After(now), nil
}

func (r *RedisRevocationRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	return r.client.Del(ctx, revocationKeyPrefix+userID).Err()
}

// DeleteExpired is a no-op: Redis evicts expired keys itself.
func (r *RedisRevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
