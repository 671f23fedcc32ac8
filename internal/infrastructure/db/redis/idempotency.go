package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyChecker guards mutating batch requests against replays.
// Key format: idem:access_codes:<client-supplied key>
type IdempotencyChecker struct {
	client *redis.Client
}

// NewIdempotencyChecker creates an IdempotencyChecker wrapping the given client.
func NewIdempotencyChecker(client *redis.Client) *IdempotencyChecker {
	return &IdempotencyChecker{client: client}
}

// Seen reports whether this key has already been processed.
func (c *IdempotencyChecker) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	return n > 0, nil
}

// Mark records the key as processed (expires after idempotencyTTL).
func (c *IdempotencyChecker) Mark(ctx context.Context, key string) error {
	return c.client.Set(ctx, c.key(key), "1", idempotencyTTL).Err()
}

func (c *IdempotencyChecker) key(k string) string {
	return "idem:access_codes:" + k
}
