package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Redis не обязателен для работы сервера, поэтому кэш без подключения
// должен молча пропускать операции, а не ронять обработчики
func TestCacheService_WithoutRedis(t *testing.T) {
	cache := NewCacheService(nil, nil)
	ctx := context.Background()

	assert.NoError(t, cache.CacheStats(ctx, "dashboard", map[string]int{"total": 1}))
	assert.NoError(t, cache.InvalidateStats(ctx, "dashboard"))

	var dest map[string]int
	assert.Error(t, cache.GetCachedStats(ctx, "dashboard", &dest))

	info, err := cache.GetCacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "disabled", info["status"])
}
