package question

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache provides Redis-backed question set caching to offload DB reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SetCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(req SetRequest) string {
	category := req.Category
	if category == "" {
		category = "all"
	}
	return strings.Join([]string{"questionset", category, fmt.Sprint(req.Limit)}, ":")
}

func (c *Cache) Get(ctx context.Context, req SetRequest) ([]Record, error) {
	data, err := c.client.Get(ctx, c.key(req)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Cache) Set(ctx context.Context, req SetRequest, records []Record) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(req), data, c.ttl).Err()
}
