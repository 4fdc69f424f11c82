package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"backend_zgt/config"
	"backend_zgt/middleware"
	"backend_zgt/models"
	"backend_zgt/services"
)

// AuthAPI представляет API аутентификации
type AuthAPI struct {
	DB     *gorm.DB
	Config *config.Config
	Audit  *services.AuditService
}

// NewAuthAPI создает новый экземпляр AuthAPI
func NewAuthAPI(db *gorm.DB, cfg *config.Config, audit *services.AuditService) *AuthAPI {
	return &AuthAPI{DB: db, Config: cfg, Audit: audit}
}

// LoginRequest тело запроса входа
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login аутентифицирует пользователя и выдает JWT токен
func (api *AuthAPI) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "Некорректные данные: " + err.Error()})
		return
	}

	var user models.User
	if err := api.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Неверное имя пользователя или пароль"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Учетная запись отключена"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		if api.Audit != nil {
			api.Audit.LogFailure(&user.ID, services.ActionUserLogin, "users", &user.ID, "неверный пароль")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "Неверное имя пользователя или пароль"})
		return
	}

	token, err := middleware.GenerateToken(&user, api.Config)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "Ошибка при выпуске токена"})
		return
	}

	now := time.Now()
	api.DB.Model(&user).Update("last_login_at", now)

	if api.Audit != nil {
		api.Audit.LogSuccess(&user.ID, services.ActionUserLogin, "users", &user.ID, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"token": token,
			"user":  user,
		},
	})
}

// Me возвращает текущего пользователя
func (api *AuthAPI) Me(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := api.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "error": "Пользователь не найден"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": user})
}
