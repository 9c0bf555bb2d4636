package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"joblens/catalog-service/internal/model"
)

// allowScript increments the window counter and sets its expiry on first use.
// Returns 0 when the call would exceed the limit.
const allowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// Redis is a Limiter backed by Redis, so several processes share one
// per-source budget.
type Redis struct {
	client *redis.Client
	budget Budget
	script *redis.Script
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redis.Client, budget Budget) *Redis {
	return &Redis{
		client: client,
		budget: budget,
		script: redis.NewScript(allowScript),
	}
}

// Allow consumes one unit of the source's minute and day budgets.
// Redis errors fail open: an unreachable limiter must not take every
// source down with it.
func (r *Redis) Allow(ctx context.Context, source string) error {
	if err := r.consume(ctx, "ratelimit:"+source+":minute", time.Minute, r.budget.PerMinute); err != nil {
		return fmt.Errorf("%w: source %s minute budget", err, source)
	}
	if err := r.consume(ctx, "ratelimit:"+source+":day", 24*time.Hour, r.budget.PerDay); err != nil {
		return fmt.Errorf("%w: source %s day budget", err, source)
	}
	return nil
}

func (r *Redis) consume(ctx context.Context, key string, window time.Duration, limit int) error {
	if limit <= 0 {
		return nil
	}
	allowed, err := r.script.Run(ctx, r.client, []string{key}, window.Milliseconds(), limit).Int64()
	if err != nil {
		return nil
	}
	if allowed == 0 {
		return model.ErrRateLimited
	}
	return nil
}
