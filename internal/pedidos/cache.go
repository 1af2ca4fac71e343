package pedidos

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	resumoCacheKey = "pedidos:resumo"
	resumoCacheTTL = 60 * time.Second
)

// ResumoCache keeps the dashboard counts in redis for a short window.
type ResumoCache struct {
	client *redis.Client
}

// NewResumoCache constructs a ResumoCache.
func NewResumoCache(client *redis.Client) *ResumoCache {
	return &ResumoCache{client: client}
}

// Get returns the cached resumo, or nil on a miss.
func (c *ResumoCache) Get(ctx context.Context) (*Resumo, error) {
	payload, err := c.client.Get(ctx, resumoCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resumo Resumo
	if err := json.Unmarshal(payload, &resumo); err != nil {
		return nil, err
	}
	return &resumo, nil
}

// Set stores the resumo with the cache TTL.
func (c *ResumoCache) Set(ctx context.Context, resumo *Resumo) error {
	payload, err := json.Marshal(resumo)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resumoCacheKey, payload, resumoCacheTTL).Err()
}

// Invalidate drops the cached resumo after a write.
func (c *ResumoCache) Invalidate(ctx context.Context) error {
	err := c.client.Del(ctx, resumoCacheKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
