package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T, ttl, pause time.Duration) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisGuard(client, ttl, pause), mr
}

func TestRedisGuard_RejectsSecondAttempt(t *testing.T) {
	g, mr := newTestGuard(t, 10*time.Second, 0)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "7"))
	assert.True(t, mr.Exists("bookshelf:destroy:7"))
	assert.ErrorIs(t, g.Wait(ctx, "7"), ErrThrottled)

	// другой ключ не блокируется
	assert.NoError(t, g.Wait(ctx, "8"))
}

func TestRedisGuard_ExpiresAfterTTL(t *testing.T) {
	g, mr := newTestGuard(t, 2*time.Second, 0)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "7"))
	mr.FastForward(3 * time.Second)
	assert.NoError(t, g.Wait(ctx, "7"))
}

func TestRedisGuard_Release(t *testing.T) {
	g, mr := newTestGuard(t, 10*time.Second, 0)
	ctx := context.Background()

	require.NoError(t, g.Wait(ctx, "7"))
	g.Release(ctx, "7")
	assert.False(t, mr.Exists("bookshelf:destroy:7"))
	assert.NoError(t, g.Wait(ctx, "7"))

	// снятие отсутствующего ключа безопасно
	g.Release(ctx, "missing")
}

func TestRedisGuard_PauseCanceled(t *testing.T) {
	g, _ := newTestGuard(t, 10*time.Second, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Wait(ctx, "7"), context.Canceled)
}

func TestRedisGuard_Unavailable(t *testing.T) {
	g, mr := newTestGuard(t, 10*time.Second, 0)
	mr.Close()

	err := g.Wait(context.Background(), "7")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrThrottled)
}
