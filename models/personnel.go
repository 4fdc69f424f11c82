package models

import (
	"time"

	"gorm.io/gorm"
)

// Personnel представляет сотрудника (материально ответственное лицо),
// за которым может быть закреплена техника, носители и телефоны
type Personnel struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Основная идентификация
	FullName       string `json:"full_name" gorm:"not null;index;type:varchar(255)"`
	Rank           string `json:"rank" gorm:"type:varchar(100)"`                       // Звание
	RankPriority   int    `json:"rank_priority" gorm:"index"`                          // Для сортировки по старшинству
	Position       string `json:"position" gorm:"type:varchar(255)"`                   // Должность
	Unit           string `json:"unit" gorm:"type:varchar(100)"`                       // Подразделение
	PersonalNumber string `json:"personal_number" gorm:"index;type:varchar(50)"`       // Личный номер

	// Статус
	Status string `json:"status" gorm:"default:'active';type:varchar(50)"` // active, transferred, dismissed

	// Связи
	Phones       []Phone          `json:"phones,omitempty" gorm:"foreignKey:OwnerID"`
	Equipment    []Equipment      `json:"equipment,omitempty" gorm:"foreignKey:CurrentOwnerID"`
	StorageItems []StorageAndPass `json:"storage_items,omitempty" gorm:"foreignKey:AssignedToID"`
}

// TableName задает имя таблицы для модели Personnel
func (Personnel) TableName() string {
	return "personnel"
}

// IsAvailable проверяет, может ли сотрудник быть получателем имущества
func (p *Personnel) IsAvailable() bool {
	return p.Status == "active"
}

// GetStatusDisplayName возвращает читаемое название статуса
func (p *Personnel) GetStatusDisplayName() string {
	statusMap := map[string]string{
		"active":      "В строю",
		"transferred": "Переведен",
		"dismissed":   "Уволен",
	}
	if displayName, exists := statusMap[p.Status]; exists {
		return displayName
	}
	return p.Status
}
