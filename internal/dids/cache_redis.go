package dids

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"didweb-anoncreds/pkg/platform/sentinel"
)

const documentKeyPrefix = "didweb:diddoc:"

// RedisCache shares resolved documents between instances.
type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, did string) (*Document, error) {
	raw, err := c.client.Get(ctx, documentKeyPrefix+did).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get did document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode cached did document: %w", err)
	}
	return &doc, nil
}

// Set stores the document with SET EX.
func (c *RedisCache) Set(ctx context.Context, did string, doc *Document, ttl time.Duration) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode did document: %w", err)
	}
	return c.client.Set(ctx, documentKeyPrefix+did, raw, ttl).Err()
}
