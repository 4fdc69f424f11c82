package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// UserAPI представляет API управления пользователями
type UserAPI struct {
	DB    *gorm.DB
	Audit *services.AuditService
}

// NewUserAPI создает новый экземпляр UserAPI
func NewUserAPI(db *gorm.DB, audit *services.AuditService) *UserAPI {
	return &UserAPI{DB: db, Audit: audit}
}

// CreateUserRequest тело запроса создания пользователя
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// GetUsers возвращает список пользователей
func (api *UserAPI) GetUsers(c *gin.Context) {
	var users []models.User
	if err := api.DB.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при получении списка пользователей"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": users})
}

// CreateUser создает пользователя системы
func (api *UserAPI) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при хэшировании пароля"})
		return
	}

	role := req.Role
	if role == "" {
		role = "operator"
	}

	user := models.User{
		Username: req.Username,
		Password: string(hash),
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
		IsActive: true,
	}

	if err := api.DB.Create(&user).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "Пользователь с таким именем уже существует"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при создании пользователя"})
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionUserCreate, "users", &user.ID, nil)
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Пользователь успешно создан",
		"data":    user,
	})
}

// UpdateUser обновляет пользователя
func (api *UserAPI) UpdateUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := api.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Пользователь не найден"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	// Пароль меняется только через хэширование
	if rawPassword, ok := updates["password"].(string); ok && rawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при хэшировании пароля"})
			return
		}
		updates["password"] = string(hash)
	} else {
		delete(updates, "password")
	}
	delete(updates, "id")

	if err := api.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при обновлении пользователя"})
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionUserUpdate, "users", &user.ID, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Пользователь успешно обновлен",
		"data":    user,
	})
}

// DeleteUser выполняет мягкое удаление пользователя
func (api *UserAPI) DeleteUser(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	result := api.DB.Delete(&models.User{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при удалении пользователя"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Пользователь не найден"})
		return
	}

	if api.Audit != nil {
		actorID := middleware.GetCurrentUserID(c)
		api.Audit.LogSuccess(&actorID, services.ActionUserDelete, "users", &id, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Пользователь успешно удален",
	})
}
