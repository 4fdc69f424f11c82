package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend_zgt/services"
)

// AuditAPI представляет API просмотра аудит логов
type AuditAPI struct {
	Service *services.AuditService
}

// NewAuditAPI создает новый экземпляр AuditAPI
func NewAuditAPI(service *services.AuditService) *AuditAPI {
	return &AuditAPI{Service: service}
}

// GetLogs возвращает аудит логи с фильтрацией
func (api *AuditAPI) GetLogs(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := services.AuditLogFilter{
		UserID:   parseUintQuery(c, "user_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Page:     page,
		PerPage:  perPage,
	}

	if raw := c.Query("success"); raw != "" {
		v := raw == "true"
		filter.Success = &v
	}
	if raw := c.Query("from"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &t
		}
	}
	if raw := c.Query("to"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &t
		}
	}

	logs, total, err := api.Service.GetLogs(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении аудит логов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       logs,
		"pagination": paginationResponse(page, perPage, total),
	})
}
