package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// StorageDeviceAPI представляет API учета носителей, установленных в технику
type StorageDeviceAPI struct {
	Service *services.StorageDeviceService
	Audit   *services.AuditService
}

// NewStorageDeviceAPI создает новый экземпляр StorageDeviceAPI
func NewStorageDeviceAPI(service *services.StorageDeviceService, audit *services.AuditService) *StorageDeviceAPI {
	return &StorageDeviceAPI{Service: service, Audit: audit}
}

// GetDevices возвращает список носителей
func (api *StorageDeviceAPI) GetDevices(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := services.StorageDeviceFilter{
		EquipmentID: parseUintQuery(c, "equipment_id"),
		DeviceType:  c.Query("device_type"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		Page:        page,
		PerPage:     perPage,
	}

	devices, total, err := api.Service.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка носителей"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       devices,
		"pagination": paginationResponse(page, perPage, total),
	})
}

// GetDevice возвращает носитель по идентификатору
func (api *StorageDeviceAPI) GetDevice(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	device, err := api.Service.GetByID(id)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": device})
}

// CreateDevice создает запись о носителе
func (api *StorageDeviceAPI) CreateDevice(c *gin.Context) {
	var device models.StorageDevice
	if err := c.ShouldBindJSON(&device); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Service.Create(&device); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionStorageDeviceCreate, "storage_devices", &device.ID, nil)
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Носитель успешно добавлен",
		"data":    device,
	})
}

// UpdateDevice обновляет карточку носителя
func (api *StorageDeviceAPI) UpdateDevice(c *gin.Context) {
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

	device, err := api.Service.Update(id, updates)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionStorageDeviceUpdate, "storage_devices", &id, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Карточка носителя обновлена",
		"data":    device,
	})
}

// DeleteDevice выполняет мягкое удаление носителя
func (api *StorageDeviceAPI) DeleteDevice(c *gin.Context) {
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
		api.Audit.LogSuccess(&actorID, services.ActionStorageDeviceDelete, "storage_devices", &id, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Носитель успешно удален",
	})
}
