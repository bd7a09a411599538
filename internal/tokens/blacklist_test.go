package tokens

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_RevokeExpiresWithTTL(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", 2*time.Second))
	require.True(t, m.Exists("blacklist:access:jti-1"))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	m.FastForward(3 * time.Second)

	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBlacklist_ExpiredTokenIsNotStored(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	require.NoError(t, bl.Revoke(context.Background(), "old", -time.Second))
	require.False(t, m.Exists("blacklist:access:old"))
}

func TestBlacklist_NoClientIsNoop(t *testing.T) {
	ctx := context.Background()
	for _, bl := range []*Blacklist{nil, NewBlacklist(nil)} {
		require.NoError(t, bl.Revoke(ctx, "jti", time.Minute))
		revoked, err := bl.IsRevoked(ctx, "jti")
		require.NoError(t, err)
		require.False(t, revoked)
	}
}

func TestBlacklist_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	bl := NewBlacklist(redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1}))
	m.Close()

	_, err = bl.IsRevoked(context.Background(), "jti")
	require.Error(t, err)
}
