package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// PhoneAPI представляет API учета личных телефонов
type PhoneAPI struct {
	Service *services.PhoneService
	Audit   *services.AuditService
	Cache   *services.CacheService
}

// NewPhoneAPI создает новый экземпляр PhoneAPI
func NewPhoneAPI(service *services.PhoneService, audit *services.AuditService, cache *services.CacheService) *PhoneAPI {
	return &PhoneAPI{Service: service, Audit: audit, Cache: cache}
}

// GetPhones возвращает список телефонов
func (api *PhoneAPI) GetPhones(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := services.PhoneFilter{
		OwnerID: parseUintQuery(c, "owner_id"),
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}

	phones, total, err := api.Service.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка телефонов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       phones,
		"pagination": paginationResponse(page, perPage, total),
	})
}

// GetPhone возвращает телефон по идентификатору
func (api *PhoneAPI) GetPhone(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	phone, err := api.Service.GetByID(id)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": phone})
}

// CreatePhone регистрирует телефон
func (api *PhoneAPI) CreatePhone(c *gin.Context) {
	var phone models.Phone
	if err := c.ShouldBindJSON(&phone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Service.Create(&phone); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionPhoneCreate, "phones", &phone.ID, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Телефон успешно зарегистрирован",
		"data":    phone,
	})
}

// UpdatePhone обновляет карточку телефона
func (api *PhoneAPI) UpdatePhone(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}
	delete(updates, "id")

	phone, err := api.Service.Update(id, updates)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionPhoneUpdate, "phones", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Карточка телефона обновлена",
		"data":    phone,
	})
}

// DeletePhone выполняет мягкое удаление телефона
func (api *PhoneAPI) DeletePhone(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := api.Service.Delete(id); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionPhoneDelete, "phones", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Телефон успешно удален",
	})
}

// BatchRequest тело пакетного запроса по телефонам
type BatchRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// BatchCheckIn пакетно принимает телефоны на хранение
func (api *PhoneAPI) BatchCheckIn(c *gin.Context) {
	api.batchTransition(c, services.ActionPhoneCheckIn, api.Service.BatchCheckIn, "Телефоны успешно приняты на хранение")
}

// BatchCheckOut пакетно выдает телефоны владельцам
func (api *PhoneAPI) BatchCheckOut(c *gin.Context) {
	api.batchTransition(c, services.ActionPhoneCheckOut, api.Service.BatchCheckOut, "Телефоны успешно выданы")
}

func (api *PhoneAPI) batchTransition(c *gin.Context, action services.AuditAction, fn func(ctx context.Context, ids []uint, createdByID uint) (int, error), message string) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	actorID := middleware.GetCurrentUserID(c)
	count, err := fn(c.Request.Context(), req.IDs, actorID)
	if err != nil {
		if api.Audit != nil {
			api.Audit.LogFailure(&actorID, action, "phones", nil, err.Error())
		}
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		api.Audit.LogSuccess(&actorID, action, "phones", nil, map[string]interface{}{
			"count": count,
		})
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
		"count":   count,
	})
}

// GetStatusHistory возвращает журнал смен статуса телефона
func (api *PhoneAPI) GetStatusHistory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	history, err := api.Service.GetStatusHistory(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении журнала телефона"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": history})
}

// GetStatusReport возвращает отчет о сдаче телефонов
func (api *PhoneAPI) GetStatusReport(c *gin.Context) {
	report, err := api.Service.GetStatusReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при формировании отчета"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": report})
}
