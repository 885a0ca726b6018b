package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker answers whether a decoded principal's token has been revoked
// since it was issued.
type Revoker interface {
	IsRevoked(ctx context.Context, p *Principal) (bool, error)
}

// RedisRevoker stores per-user revocation cutoffs in Redis. Tokens issued
// at or before the cutoff are rejected even when cryptographically valid,
// which lets account deactivation take effect before tokens expire.
type RedisRevoker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRevoker constructs a RedisRevoker. The ttl should cover the
// longest token lifetime so cutoffs outlive every affected token.
func NewRedisRevoker(client *redis.Client, ttl time.Duration) *RedisRevoker {
	return &RedisRevoker{client: client, ttl: ttl}
}

// Revoke records now as the revocation cutoff for the user.
func (r *RedisRevoker) Revoke(ctx context.Context, userID int64, at time.Time) error {
	return r.client.Set(ctx, r.key(userID), at.UTC().Unix(), r.ttl).Err()
}

// IsRevoked reports whether the principal's token predates a cutoff.
func (r *RedisRevoker) IsRevoked(ctx context.Context, p *Principal) (bool, error) {
	val, err := r.client.Get(ctx, r.key(p.UserID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	cutoff, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, err
	}
	return !p.IssuedAt.After(time.Unix(cutoff, 0)), nil
}

func (r *RedisRevoker) key(userID int64) string {
	return "revoked:user:" + strconv.FormatInt(userID, 10)
}

var _ Revoker = (*RedisRevoker)(nil)
