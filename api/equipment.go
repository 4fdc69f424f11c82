package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// EquipmentAPI представляет API учета вычислительной техники
type EquipmentAPI struct {
	Service  *services.EquipmentService
	Acts     *services.ActService
	Importer *services.ImportService
	Audit    *services.AuditService
	Cache    *services.CacheService
	Notifier *services.NotificationService
}

// NewEquipmentAPI создает новый экземпляр EquipmentAPI
func NewEquipmentAPI(service *services.EquipmentService, acts *services.ActService, importer *services.ImportService, audit *services.AuditService, cache *services.CacheService, notifier *services.NotificationService) *EquipmentAPI {
	return &EquipmentAPI{Service: service, Acts: acts, Importer: importer, Audit: audit, Cache: cache, Notifier: notifier}
}

// GetEquipment возвращает список техники
func (api *EquipmentAPI) GetEquipment(c *gin.Context) {
	page, perPage := parsePagination(c)

	var isPersonal *bool
	if raw := c.Query("is_personal"); raw != "" {
		v := raw == "true"
		isPersonal = &v
	}

	filter := services.EquipmentFilter{
		EquipmentType: c.Query("equipment_type"),
		Status:        c.Query("status"),
		OwnerID:       parseUintQuery(c, "owner_id"),
		Location:      c.Query("location"),
		IsPersonal:    isPersonal,
		Search:        c.Query("search"),
		Page:          page,
		PerPage:       perPage,
	}

	equipment, total, err := api.Service.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка техники"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       equipment,
		"pagination": paginationResponse(page, perPage, total),
	})
}

// GetEquipmentItem возвращает технику по идентификатору
func (api *EquipmentAPI) GetEquipmentItem(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	equipment, err := api.Service.GetByID(id)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": equipment})
}

// CreateEquipment создает карточку техники
func (api *EquipmentAPI) CreateEquipment(c *gin.Context) {
	var equipment models.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Service.Create(&equipment); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionEquipmentCreate, "equipment", &equipment.ID, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Техника успешно добавлена",
		"data":    equipment,
	})
}

// UpdateEquipment обновляет карточку техники
func (api *EquipmentAPI) UpdateEquipment(c *gin.Context) {
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

	equipment, err := api.Service.Update(id, updates)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionEquipmentUpdate, "equipment", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Карточка техники обновлена",
		"data":    equipment,
	})
}

// DeleteEquipment выполняет мягкое удаление техники
func (api *EquipmentAPI) DeleteEquipment(c *gin.Context) {
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
		api.Audit.LogSuccess(&actorID, services.ActionEquipmentDelete, "equipment", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Техника успешно удалена",
	})
}

// CreateMovement регистрирует перемещение техники
func (api *EquipmentAPI) CreateMovement(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var input services.MovementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}
	input.CreatedByID = middleware.GetCurrentUserID(c)

	movement, err := api.Service.CreateMovement(c.Request.Context(), id, input)
	if err != nil {
		if api.Audit != nil {
			actorID := middleware.GetCurrentUserID(c)
			api.Audit.LogFailure(&actorID, services.ActionEquipmentMove, "equipment", &id, err.Error())
		}
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionEquipmentMove, "equipment", &id, map[string]interface{}{
			"movement_id": movement.ID,
			"to_location": movement.ToLocation,
		})
	}
	invalidateDashboardCache(c, api.Cache)

	// Списание заметное событие, дежурный чат узнает о нем сразу
	if api.Notifier != nil && movement.MovementType == "disposal" {
		details := fmt.Sprintf("Техника #%d списана. Причина: %s", movement.EquipmentID, movement.Reason)
		go func() {
			if err := api.Notifier.SendCustodyAlert("Списание техники", details); err != nil {
				log.Printf("Ошибка отправки уведомления о списании: %v", err)
			}
		}()
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Перемещение успешно зарегистрировано",
		"data":    movement,
	})
}

// GetMovementHistory возвращает историю перемещений техники
func (api *EquipmentAPI) GetMovementHistory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	movements, err := api.Service.GetMovementHistory(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении истории перемещений"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": movements})
}

// GetMovementAct отдает PDF акта приема-передачи по перемещению
func (api *EquipmentAPI) GetMovementAct(c *gin.Context) {
	movementID, ok := parseUintParam(c, "movement_id")
	if !ok {
		return
	}

	data, filename, err := api.Acts.GenerateMovementAct(movementID)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ImportLaptops импортирует ноутбуки из xlsx-файла
func (api *EquipmentAPI) ImportLaptops(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Файл импорта не передан"})
		return
	}
	defer file.Close()

	result, err := api.Importer.ImportLaptops(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionEquipmentImport, "equipment", nil, map[string]interface{}{
			"inserted": result.Inserted,
			"updated":  result.Updated,
		})
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Импорт завершен",
		"data":    result,
	})
}

// GetStatistics возвращает статистику по парку техники
func (api *EquipmentAPI) GetStatistics(c *gin.Context) {
	stats, err := api.Service.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении статистики"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
