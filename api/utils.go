package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend_zgt/services"
)

// respondCustodyError отправляет типизированный отказ движка учета
// с корректным HTTP статусом. Неклассифицированные ошибки отвечают 500
// без деталей хранилища
func respondCustodyError(c *gin.Context, err error) {
	ce, ok := services.AsCustodyError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Внутренняя ошибка сервера",
		})
		return
	}

	status := http.StatusConflict
	if ce.Code == services.RejectionNotFound {
		status = http.StatusNotFound
	}

	body := gin.H{
		"status": "error",
		"code":   ce.Code,
		"error":  ce.Message,
	}
	if len(ce.IDs) > 0 {
		body["ids"] = ce.IDs
	}
	if ce.Retryable() {
		body["retryable"] = true
	}

	c.JSON(status, body)
}

// invalidateDashboardCache сбрасывает кэш сводной панели после изменения
// учетных данных, чтобы панель не отдавала устаревшие счетчики
func invalidateDashboardCache(c *gin.Context, cache *services.CacheService) {
	if cache == nil {
		return
	}
	_ = cache.InvalidateStats(c.Request.Context(), "dashboard")
}

// parsePagination извлекает параметры пагинации из запроса
func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 20
	}
	return page, perPage
}

// parseUintParam извлекает числовой параметр пути
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "Некорректный идентификатор",
		})
		return 0, false
	}
	return uint(value), true
}

// parseUintQuery извлекает необязательный числовой параметр запроса
func parseUintQuery(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := uint(value)
	return &v
}

// paginationResponse формирует блок пагинации ответа
func paginationResponse(page, perPage int, total int64) gin.H {
	return gin.H{
		"page":  page,
		"limit": perPage,
		"total": total,
		"pages": (total + int64(perPage) - 1) / int64(perPage),
	}
}
