package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"backend_zgt/config"
)

var Redis *redis.Client
var Ctx = context.Background()

// InitRedis инициализирует подключение к Redis
func InitRedis(cfg *config.Config) error {
	Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	// Проверяем подключение
	if err := Redis.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log.Println("✅ Успешно подключено к Redis")
	return nil
}

// GetRedis возвращает экземпляр Redis клиента
func GetRedis() *redis.Client {
	return Redis
}

// RateLimitCheck увеличивает счетчик запросов клиента в фиксированном окне
// и возвращает, уложился ли клиент в лимит, вместе с текущим значением
func RateLimitCheck(clientID string, limit int64, window time.Duration) (bool, int64, error) {
	if Redis == nil {
		return true, 0, nil
	}

	key := fmt.Sprintf("ratelimit:%s", clientID)

	pipe := Redis.Pipeline()
	incr := pipe.Incr(Ctx, key)
	pipe.Expire(Ctx, key, window)
	if _, err := pipe.Exec(Ctx); err != nil {
		return false, 0, err
	}

	count, err := incr.Result()
	if err != nil {
		return false, 0, err
	}

	return count <= limit, count, nil
}
