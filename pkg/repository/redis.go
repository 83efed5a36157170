package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/consoleshop/pkg/config"
	"github.com/example/consoleshop/pkg/models"
	"github.com/go-redis/redis/v8"
)

// RedisRepository keeps carts as JSON values under cart:<username>.
type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return NewRedisRepositoryFromClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}), cfg)
}

func NewRedisRepositoryFromClient(client *redis.Client, cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: client,
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func cartKey(username string) string {
	return fmt.Sprintf("cart:%s", username)
}

func (r *RedisRepository) LoadCart(ctx context.Context, username string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.GetJSON(ctx, cartKey(username), &items)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

// SaveCart replaces the stored cart; an empty cart deletes the key. The
// TTL is refreshed on every save so only idle carts expire.
func (r *RedisRepository) SaveCart(ctx context.Context, username string, items []models.CartItem) error {
	if len(items) == 0 {
		return r.Del(ctx, cartKey(username))
	}
	if err := r.SetJSON(ctx, cartKey(username), items, r.config.CartTTL); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
