package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned when an operation needs Redis and no client is configured.
var ErrUnavailable = errors.New("redis unavailable")

const revokedTokenKeyPrefix = "revoked:%s"

// RevokedTokenKey is the key marking a token id as revoked.
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(revokedTokenKeyPrefix, jti)
}

// RevokeToken marks jti as revoked until ttl elapses. A non-positive ttl
// means the token has already expired and nothing is stored.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return ErrUnavailable
	}
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was revoked. Without a client nothing is revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
