package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// StorageAndPassAPI представляет API учета носителей и пропусков
type StorageAndPassAPI struct {
	Service *services.StorageAndPassService
	Audit   *services.AuditService
	Cache   *services.CacheService
}

// NewStorageAndPassAPI создает новый экземпляр StorageAndPassAPI
func NewStorageAndPassAPI(service *services.StorageAndPassService, audit *services.AuditService, cache *services.CacheService) *StorageAndPassAPI {
	return &StorageAndPassAPI{Service: service, Audit: audit, Cache: cache}
}

// GetAssets возвращает список активов
func (api *StorageAndPassAPI) GetAssets(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := services.StorageAndPassFilter{
		AssetType:    c.Query("asset_type"),
		Status:       c.Query("status"),
		AssignedToID: parseUintQuery(c, "assigned_to_id"),
		Search:       c.Query("search"),
		Page:         page,
		PerPage:      perPage,
	}

	assets, total, err := api.Service.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка активов"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       assets,
		"pagination": paginationResponse(page, perPage, total),
	})
}

// GetAsset возвращает актив по идентификатору
func (api *StorageAndPassAPI) GetAsset(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	asset, err := api.Service.GetByID(id)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": asset})
}

// CreateAsset создает запись об активе
func (api *StorageAndPassAPI) CreateAsset(c *gin.Context) {
	var asset models.StorageAndPass
	if err := c.ShouldBindJSON(&asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Service.Create(&asset); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionStorageCreate, "storage_and_passes", &asset.ID, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Актив успешно добавлен",
		"data":    asset,
	})
}

// UpdateAsset обновляет карточку актива
func (api *StorageAndPassAPI) UpdateAsset(c *gin.Context) {
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

	asset, err := api.Service.Update(id, updates)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionStorageUpdate, "storage_and_passes", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Карточка актива обновлена",
		"data":    asset,
	})
}

// DeleteAsset выполняет мягкое удаление актива
func (api *StorageAndPassAPI) DeleteAsset(c *gin.Context) {
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
		api.Audit.LogSuccess(&actorID, services.ActionStorageDelete, "storage_and_passes", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Актив успешно удален",
	})
}

// AssignRequest тело запроса выдачи актива
type AssignRequest struct {
	PersonID uint   `json:"person_id" binding:"required"`
	Notes    string `json:"notes"`
}

// RevokeRequest тело запроса возврата актива
type RevokeRequest struct {
	Notes string `json:"notes"`
}

// AssignAsset выдает актив сотруднику
func (api *StorageAndPassAPI) AssignAsset(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	actorID := middleware.GetCurrentUserID(c)
	asset, err := api.Service.Assign(c.Request.Context(), id, req.PersonID, req.Notes, actorID)
	if err != nil {
		if api.Audit != nil {
			api.Audit.LogFailure(&actorID, services.ActionStorageAssign, "storage_and_passes", &id, err.Error())
		}
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		api.Audit.LogSuccess(&actorID, services.ActionStorageAssign, "storage_and_passes", &id, map[string]interface{}{
			"person_id": req.PersonID,
		})
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Актив успешно выдан",
		"data":    asset,
	})
}

// RevokeAsset принимает актив обратно
func (api *StorageAndPassAPI) RevokeAsset(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	actorID := middleware.GetCurrentUserID(c)
	asset, err := api.Service.Revoke(c.Request.Context(), id, req.Notes, actorID)
	if err != nil {
		if api.Audit != nil {
			api.Audit.LogFailure(&actorID, services.ActionStorageRevoke, "storage_and_passes", &id, err.Error())
		}
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		api.Audit.LogSuccess(&actorID, services.ActionStorageRevoke, "storage_and_passes", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Актив успешно возвращен",
		"data":    asset,
	})
}

// GetAssignmentHistory возвращает журнал выдач актива
func (api *StorageAndPassAPI) GetAssignmentHistory(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	history, err := api.Service.GetAssignmentHistory(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении журнала выдач"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": history})
}

// GetStatistics возвращает статистику по активам
func (api *StorageAndPassAPI) GetStatistics(c *gin.Context) {
	stats, err := api.Service.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении статистики"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}
