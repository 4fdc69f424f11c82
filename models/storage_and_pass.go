package models

import (
	"time"

	"gorm.io/gorm"
)

// StorageAndPass представляет учетный актив строгого учета:
// съемный носитель (флешка) или электронный пропуск
type StorageAndPass struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Тип актива
	AssetType string `json:"asset_type" gorm:"not null;type:varchar(50)"` // flash_drive, electronic_pass

	// Идентификация
	SerialNumber string `json:"serial_number" gorm:"uniqueIndex;not null;type:varchar(100)"`
	Model        string `json:"model" gorm:"type:varchar(255)"`
	Manufacturer string `json:"manufacturer" gorm:"type:varchar(100)"`

	// Статус выдачи. Инвариант: in_use подразумевает непустого держателя
	Status string `json:"status" gorm:"not null;default:'stock';type:varchar(50)"` // in_use, stock, broken, lost

	// Текущий держатель: ссылка, единственная в каждый момент времени
	AssignedToID *uint      `json:"assigned_to_id" gorm:"index"`
	AssignedTo   *Personnel `json:"assigned_to,omitempty" gorm:"foreignKey:AssignedToID"`

	// Характеристики
	CapacityGb  int `json:"capacity_gb"`
	AccessLevel int `json:"access_level"`

	// Выдача/возврат
	IssueDate  *time.Time `json:"issue_date"`
	ReturnDate *time.Time `json:"return_date"`

	// Примечания
	Notes string `json:"notes" gorm:"type:text"`
}

// TableName задает имя таблицы для модели StorageAndPass
func (StorageAndPass) TableName() string {
	return "storage_and_passes"
}

// IsIssued проверяет, выдан ли актив на руки
func (sp *StorageAndPass) IsIssued() bool {
	return sp.Status == "in_use" && sp.AssignedToID != nil
}

// GetStatusDisplayName возвращает читаемое название статуса
func (sp *StorageAndPass) GetStatusDisplayName() string {
	statusMap := map[string]string{
		"in_use": "Выдан",
		"stock":  "На складе",
		"broken": "Неисправен",
		"lost":   "Утерян",
	}
	if displayName, exists := statusMap[sp.Status]; exists {
		return displayName
	}
	return sp.Status
}

// GetAssetTypeDisplayName возвращает читаемое название типа актива
func (sp *StorageAndPass) GetAssetTypeDisplayName() string {
	typeMap := map[string]string{
		"flash_drive":     "Съемный носитель",
		"electronic_pass": "Электронный пропуск",
	}
	if displayName, exists := typeMap[sp.AssetType]; exists {
		return displayName
	}
	return sp.AssetType
}

// StorageAssignment представляет запись журнала выдачи/возврата актива.
// Создается в одной транзакции со сменой держателя и никогда не изменяется
type StorageAssignment struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Связь с активом
	AssetID uint            `json:"asset_id" gorm:"not null;index"`
	Asset   *StorageAndPass `json:"asset,omitempty" gorm:"foreignKey:AssetID"`

	// Действие и участник
	Action   string     `json:"action" gorm:"not null;type:varchar(20)"` // assign, revoke
	PersonID *uint      `json:"person_id"`
	Person   *Personnel `json:"person,omitempty" gorm:"foreignKey:PersonID"`

	// Примечания
	Notes string `json:"notes" gorm:"type:text"`

	// Кто выполнил операцию
	CreatedByID uint  `json:"created_by_id" gorm:"index"`
	CreatedBy   *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// TableName задает имя таблицы для модели StorageAssignment
func (StorageAssignment) TableName() string {
	return "storage_assignments"
}

// GetActionDisplayName возвращает читаемое название действия
func (sa *StorageAssignment) GetActionDisplayName() string {
	actionMap := map[string]string{
		"assign": "Выдача",
		"revoke": "Возврат",
	}
	if displayName, exists := actionMap[sa.Action]; exists {
		return displayName
	}
	return sa.Action
}
