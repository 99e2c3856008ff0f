package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sovyx:upload:"

// RedisUploadCache stores uploads as JSON values that Redis expires itself.
type RedisUploadCache struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisUploadCache(client *redis.Client) *RedisUploadCache {
	return &RedisUploadCache{client: client, now: time.Now}
}

func (c *RedisUploadCache) Put(ctx context.Context, upload *model.Upload) error {
	ttl := upload.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return fmt.Errorf("upload %s already expired", upload.ID)
	}

	value, err := json.Marshal(upload)
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+upload.ID, value, ttl).Err(); err != nil {
		return fmt.Errorf("store upload %s: %w", upload.ID, err)
	}
	return nil
}

func (c *RedisUploadCache) Get(ctx context.Context, id string) (*model.Upload, error) {
	value, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load upload %s: %w", id, err)
	}

	var upload model.Upload
	if err := json.Unmarshal(value, &upload); err != nil {
		return nil, fmt.Errorf("decode upload %s: %w", id, err)
	}
	return &upload, nil
}

func (c *RedisUploadCache) Delete(ctx context.Context, id string) error {
	n, err := c.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete upload %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
