package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"rmtl/internal/domain"
	"rmtl/internal/port"
)

// EnumKey is where the vocabulary set is stored.
const EnumKey = "rmtl:enums"

type enumCache struct {
	client *redis.Client
	key    string
}

// NewEnumCache creates a Redis-backed EnumCache.
func NewEnumCache(client *redis.Client) port.EnumCache {
	return &enumCache{client: client, key: EnumKey}
}

func (c *enumCache) Get(ctx context.Context) (*domain.EnumSet, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("enumCache.Get: %w", err)
	}
	var set domain.EnumSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("enumCache.Get: decode: %w", err)
	}
	return &set, nil
}

func (c *enumCache) Set(ctx context.Context, enums *domain.EnumSet, ttl time.Duration) error {
	if enums == nil {
		return nil
	}
	raw, err := json.Marshal(enums)
	if err != nil {
		return fmt.Errorf("enumCache.Set: encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("enumCache.Set: %w", err)
	}
	return nil
}
