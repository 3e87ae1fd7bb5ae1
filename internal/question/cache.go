package question

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultBatchTTL = 5 * time.Minute

// RedisBatchCache keeps whole batch results for a short TTL so repeated
// identical requests skip the tier walk entirely. Both directions are
// best-effort: a miss and a Redis outage look the same to the pipeline.
type RedisBatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ BatchCache = (*RedisBatchCache)(nil)

func NewRedisBatchCache(client *redis.Client, ttl time.Duration) *RedisBatchCache {
	if ttl <= 0 {
		ttl = defaultBatchTTL
	}
	return &RedisBatchCache{client: client, ttl: ttl}
}

func (c *RedisBatchCache) key(req BatchRequest) string {
	return fmt.Sprintf("triviabatch:%s:%d", req.Difficulty, req.Count)
}

func (c *RedisBatchCache) Get(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	data, err := c.client.Get(ctx, c.key(req)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var res BatchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *RedisBatchCache) Set(ctx context.Context, req BatchRequest, res BatchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(req), data, c.ttl).Err()
}
