package automation

import (
	"context"
	"fmt"
	"time"

	"ratequote-backend/internal/components/telemetry"

	"github.com/redis/go-redis/v9"
)

// Gate bounds how many remote browser sessions run at once. Acquire returns
// ErrBusy when no session is free.
type Gate interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// Unbounded never refuses a session.
type Unbounded struct{}

func (Unbounded) Acquire(context.Context) (func(), error) {
	return func() {}, nil
}

// LocalGate is an in-process semaphore.
type LocalGate struct {
	slots chan struct{}
	wait  time.Duration
}

// NewLocalGate allows limit sessions and waits up to wait for one to free up.
func NewLocalGate(limit int, wait time.Duration) LocalGate {
	if limit <= 0 {
		limit = 1
	}
	return LocalGate{slots: make(chan struct{}, limit), wait: wait}
}

func (g LocalGate) Acquire(ctx context.Context) (func(), error) {
	release := func() { <-g.slots }

	select {
	case g.slots <- struct{}{}:
		return release, nil
	default:
	}
	if g.wait <= 0 {
		return nil, ErrBusy
	}

	timer := time.NewTimer(g.wait)
	defer timer.Stop()
	select {
	case g.slots <- struct{}{}:
		return release, nil
	case <-timer.C:
		return nil, ErrBusy
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RedisGate shares a session counter between instances. The counter expires
// after ttl so a crashed instance cannot hold sessions forever.
type RedisGate struct {
	client redis.Cmdable
	key    string
	limit  int64
	ttl    time.Duration
	tel    telemetry.API
}

const report_gate_release = "gate-release"

// releaseScript decrements the counter only while it is positive. Once the
// key has expired a late release must not push it below zero, which would
// let the next instances over the limit.
var releaseScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n > 0 then
	return redis.call('DECR', KEYS[1])
end
return 0
`)

func NewRedisGate(client redis.Cmdable, key string, limit int, ttl time.Duration, tel telemetry.API) RedisGate {
	return RedisGate{
		client: client,
		key:    key,
		limit:  int64(limit),
		ttl:    ttl,
		tel:    telemetry.NewScopedAPI("automation", tel),
	}
}

func (g RedisGate) Acquire(ctx context.Context) (func(), error) {
	n, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return nil, fmt.Errorf("automation: redis gate incr: %w", err)
	}
	err = g.client.Expire(ctx, g.key, g.ttl).Err()
	if err != nil {
		g.release()
		return nil, fmt.Errorf("automation: redis gate expire: %w", err)
	}
	if n > g.limit {
		g.release()
		return nil, ErrBusy
	}
	return g.release, nil
}

func (g RedisGate) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := releaseScript.Run(ctx, g.client, []string{g.key}).Err()
	if err != nil {
		g.tel.ReportWarning(report_gate_release, fmt.Errorf("release %s: %w", g.key, err))
	}
}
