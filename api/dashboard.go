package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/services"
)

// DashboardAPI представляет API сводной панели
type DashboardAPI struct {
	Equipment *services.EquipmentService
	Storage   *services.StorageAndPassService
	Phones    *services.PhoneService
	Personnel *services.PersonnelService
	Cache     *services.CacheService
}

// NewDashboardAPI создает новый экземпляр DashboardAPI
func NewDashboardAPI(equipment *services.EquipmentService, storage *services.StorageAndPassService, phones *services.PhoneService, personnel *services.PersonnelService, cache *services.CacheService) *DashboardAPI {
	return &DashboardAPI{
		Equipment: equipment,
		Storage:   storage,
		Phones:    phones,
		Personnel: personnel,
		Cache:     cache,
	}
}

// dashboardStats сводная статистика всех картотек
type dashboardStats struct {
	Equipment *services.EquipmentStatistics      `json:"equipment"`
	Storage   *services.StorageAndPassStatistics `json:"storage_and_passes"`
	Phones    *services.PhoneStatusReport        `json:"phones"`
	Personnel int64                              `json:"personnel_total"`
}

// GetDashboard возвращает сводную статистику. Результат кэшируется:
// панель опрашивается часто, а точность до минуты здесь не нужна
func (api *DashboardAPI) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	if api.Cache != nil {
		var cached dashboardStats
		if err := api.Cache.GetCachedStats(ctx, "dashboard", &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"status": "success", "data": cached, "cached": true})
			return
		}
	}

	equipmentStats, err := api.Equipment.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении статистики техники"})
		return
	}

	storageStats, err := api.Storage.GetStatistics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении статистики активов"})
		return
	}

	phoneReport, err := api.Phones.GetStatusReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении отчета по телефонам"})
		return
	}

	_, personnelTotal, err := api.Personnel.List(services.PersonnelFilter{Status: "active"})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при подсчете личного состава"})
		return
	}

	stats := dashboardStats{
		Equipment: equipmentStats,
		Storage:   storageStats,
		Phones:    phoneReport,
		Personnel: personnelTotal,
	}

	if api.Cache != nil {
		_ = api.Cache.CacheStats(ctx, "dashboard", stats)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": stats})
}

// GetCacheInfo возвращает состояние кэша для административной панели
func (api *DashboardAPI) GetCacheInfo(c *gin.Context) {
	if api.Cache == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"status": "disabled"}})
		return
	}

	info, err := api.Cache.GetCacheStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении состояния кэша"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": info})
}
