package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jbarakanov/videohost/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// RedisUserPages stores listing pages as JSON values with a server-side
// TTL. Entries are never invalidated on user mutations; staleness is
// bounded by the TTL.
type RedisUserPages struct {
	client *redis.Client
}

func NewRedisUserPages(addr string) *RedisUserPages {
	return &RedisUserPages{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *RedisUserPages) GetUserPage(ctx context.Context, key string) ([]*models.User, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get error: %w", err)
	}

	var page []*models.User
	if err := json.Unmarshal(data, &page); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		return nil, false, nil
	}

	return page, true, nil
}

func (c *RedisUserPages) PutUserPage(ctx context.Context, key string, page []*models.User, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *RedisUserPages) Close() error {
	return c.client.Close()
}
