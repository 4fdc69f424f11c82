package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// PersonnelAPI представляет API картотеки личного состава
type PersonnelAPI struct {
	Service *services.PersonnelService
	Audit   *services.AuditService
	Cache   *services.CacheService
}

// NewPersonnelAPI создает новый экземпляр PersonnelAPI
func NewPersonnelAPI(service *services.PersonnelService, audit *services.AuditService, cache *services.CacheService) *PersonnelAPI {
	return &PersonnelAPI{Service: service, Audit: audit, Cache: cache}
}

// GetPersonnel возвращает список сотрудников
func (api *PersonnelAPI) GetPersonnel(c *gin.Context) {
	page, perPage := parsePagination(c)

	filter := services.PersonnelFilter{
		Unit:    c.Query("unit"),
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}

	personnel, total, err := api.Service.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка сотрудников"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"data":       personnel,
		"pagination": paginationResponse(page, perPage, total),
	})
}

// GetPerson возвращает сотрудника с закрепленным имуществом
func (api *PersonnelAPI) GetPerson(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	person, err := api.Service.GetByID(id)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": person})
}

// CreatePerson создает запись о сотруднике
func (api *PersonnelAPI) CreatePerson(c *gin.Context) {
	var person models.Personnel
	if err := c.ShouldBindJSON(&person); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	if err := api.Service.Create(&person); err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionPersonnelCreate, "personnel", &person.ID, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Сотрудник успешно добавлен",
		"data":    person,
	})
}

// UpdatePerson обновляет карточку сотрудника
func (api *PersonnelAPI) UpdatePerson(c *gin.Context) {
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

	person, err := api.Service.Update(id, updates)
	if err != nil {
		respondCustodyError(c, err)
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionPersonnelUpdate, "personnel", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Карточка сотрудника обновлена",
		"data":    person,
	})
}

// DeletePerson выполняет мягкое удаление сотрудника
func (api *PersonnelAPI) DeletePerson(c *gin.Context) {
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
		api.Audit.LogSuccess(&actorID, services.ActionPersonnelDelete, "personnel", &id, nil)
	}
	invalidateDashboardCache(c, api.Cache)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Сотрудник успешно удален",
	})
}

// GetUnits возвращает список подразделений
func (api *PersonnelAPI) GetUnits(c *gin.Context) {
	units, err := api.Service.GetUnits()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении подразделений"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": units})
}
