package tokens

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked token ids in Redis until the token would have expired anyway.
// A Blacklist without a client is a no-op and never reports a token as revoked.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func blacklistKey(jti string) string {
	return "blacklist:access:" + jti
}

// Revoke blacklists jti for ttl. A non-positive ttl means the token has already expired.
func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.client == nil || ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
