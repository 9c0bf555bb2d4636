package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"joblens/catalog-service/internal/model"
)

const keyPrefix = "search:"

// Redis caches result pages as JSON values with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) GetPage(ctx context.Context, fingerprint string) (*model.SearchResult, error) {
	raw, err := r.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var page model.SearchResult
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("cache decode: %w", err)
	}
	return &page, nil
}

func (r *Redis) SetPage(ctx context.Context, fingerprint string, page *model.SearchResult) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+fingerprint, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, fingerprint string) error {
	if err := r.client.Del(ctx, keyPrefix+fingerprint).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
