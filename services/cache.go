package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// CacheService предоставляет методы для кэширования
type CacheService struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewCacheService создает новый экземпляр CacheService
func NewCacheService(redisClient *redis.Client, logger *log.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Константы для TTL кэша
const (
	CacheTTLShort  = 5 * time.Minute  // Для часто изменяемых данных
	CacheTTLMedium = 15 * time.Minute // Для умеренно изменяемых данных
	CacheTTLLong   = 1 * time.Hour    // Для редко изменяемых данных
)

// Get получает значение из кэша
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	if cs.redis == nil {
		return "", fmt.Errorf("Redis не подключен")
	}

	val, err := cs.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("ключ не найден")
	}
	return val, err
}

// Set сохраняет значение в кэш
func (cs *CacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if cs.redis == nil {
		if cs.logger != nil {
			cs.logger.Printf("Redis не подключен, пропускаем кэширование для ключа: %s", key)
		}
		return nil // Не возвращаем ошибку, просто пропускаем кэширование
	}

	return cs.redis.Set(ctx, key, value, ttl).Err()
}

// Del удаляет значение из кэша
func (cs *CacheService) Del(ctx context.Context, keys ...string) error {
	if cs.redis == nil || len(keys) == 0 {
		return nil
	}

	return cs.redis.Del(ctx, keys...).Err()
}

// SetJSON сериализует значение и сохраняет его в кэш
func (cs *CacheService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации значения для кэша: %w", err)
	}
	return cs.Set(ctx, key, string(data), ttl)
}

// GetJSON получает значение из кэша и десериализует его
func (cs *CacheService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := cs.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// CacheStats кэширует статистику раздела (dashboard, equipment, phones)
func (cs *CacheService) CacheStats(ctx context.Context, statsType string, data interface{}) error {
	return cs.SetJSON(ctx, fmt.Sprintf("stats:%s", statsType), data, CacheTTLShort)
}

// GetCachedStats получает статистику раздела из кэша
func (cs *CacheService) GetCachedStats(ctx context.Context, statsType string, dest interface{}) error {
	return cs.GetJSON(ctx, fmt.Sprintf("stats:%s", statsType), dest)
}

// InvalidateStats инвалидирует кэш статистики раздела
func (cs *CacheService) InvalidateStats(ctx context.Context, statsTypes ...string) error {
	keys := make([]string, 0, len(statsTypes))
	for _, t := range statsTypes {
		keys = append(keys, fmt.Sprintf("stats:%s", t))
	}
	return cs.Del(ctx, keys...)
}

// GetCacheStats возвращает статистику использования кэша
func (cs *CacheService) GetCacheStats(ctx context.Context) (map[string]interface{}, error) {
	if cs.redis == nil {
		return map[string]interface{}{
			"status": "disabled",
		}, nil
	}

	keyCount, err := cs.redis.DBSize(ctx).Result()
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":    "enabled",
		"key_count": keyCount,
	}, nil
}
