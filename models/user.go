package models

import (
	"time"

	"gorm.io/gorm"
)

// User представляет пользователя системы учета
type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Основные поля
	Username string `json:"username" gorm:"uniqueIndex;not null;type:varchar(100)"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password string `json:"-" gorm:"not null"` // Хэш пароля, не возвращается в JSON

	// Дополнительные поля
	FullName string `json:"full_name" gorm:"type:varchar(255)"`
	Role     string `json:"role" gorm:"default:'operator';type:varchar(50)"` // admin, operator, viewer
	IsActive bool   `json:"is_active" gorm:"default:true"`

	LastLoginAt *time.Time `json:"last_login_at"`
}

// TableName задает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// GetRoleDisplayName возвращает читаемое название роли
func (u *User) GetRoleDisplayName() string {
	roleMap := map[string]string{
		"admin":    "Администратор",
		"operator": "Оператор",
		"viewer":   "Наблюдатель",
	}
	if displayName, exists := roleMap[u.Role]; exists {
		return displayName
	}
	return u.Role
}
