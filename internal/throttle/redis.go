package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisGuard отклоняет повторное удаление одной и той же записи в течение ttl
// (двойная отправка формы, несколько вкладок), затем выдерживает паузу.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	pause  time.Duration
	prefix string
}

func NewRedisGuard(client *redis.Client, ttl, pause time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl, pause: pause, prefix: "bookshelf:destroy:"}
}

func (g *RedisGuard) Wait(ctx context.Context, key string) error {
	acquired, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339Nano), g.ttl).Result()
	if err != nil {
		return fmt.Errorf("destroy guard: %w", err)
	}
	if !acquired {
		return ErrThrottled
	}
	return sleep(ctx, g.pause)
}

// Release удаляет ключ, чтобы после неудачного удаления можно было сразу повторить попытку.
func (g *RedisGuard) Release(ctx context.Context, key string) {
	_ = g.client.Del(ctx, g.prefix+key).Err()
}
