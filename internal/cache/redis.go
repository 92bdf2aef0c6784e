package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/subtrack-app/subtrack-backend/internal/config"
)

// Redis — кеш поверх redis. Подсказка приоритета у redis отсутствует,
// SetWithPriority её игнорирует.
type Redis struct {
	Db *redis.Client
}

// InitRedis подключается к redis и проверяет соединение пингом.
func InitRedis(ctx context.Context, cfg config.RedisConnection) (*Redis, error) {
	const op = "cache.InitRedis"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Redis{Db: db}, nil
}

// Get пытается получить значение из кеша по ключу.
func (c *Redis) Get(key string, result any) (bool, error) {
	const op = "cache.Redis.Get"
	val, err := c.Db.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal([]byte(val), result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в кеш с временем жизни.
func (c *Redis) Set(key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Db.Set(context.Background(), key, jsonData, expiration).Err()
}

// SetWithPriority сохраняет значение; приоритет не поддерживается redis
// и отбрасывается.
func (c *Redis) SetWithPriority(key string, value any, expiration time.Duration, _ Priority) error {
	return c.Set(key, value, expiration)
}

// Invalidate удаляет значение из кеша по ключу.
func (c *Redis) Invalidate(key string) error {
	return c.Db.Del(context.Background(), key).Err()
}
