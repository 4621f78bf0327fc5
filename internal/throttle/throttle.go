// Package throttle задерживает и ограничивает деструктивные операции.
package throttle

import (
	"context"
	"errors"
	"time"
)

// ErrThrottled — операция над тем же ключом уже выполняется или выполнялась только что.
var ErrThrottled = errors.New("too many requests")

// Throttle вызывается перед удалением; key идентифицирует удаляемую запись.
// Release снимает захват, если удаление не состоялось.
type Throttle interface {
	Wait(ctx context.Context, key string) error
	Release(ctx context.Context, key string)
}

// Pause — фиксированная пауза перед операцией. Нулевая длительность отключает паузу.
type Pause time.Duration

func (p Pause) Wait(ctx context.Context, _ string) error {
	return sleep(ctx, time.Duration(p))
}

func (Pause) Release(context.Context, string) {}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
