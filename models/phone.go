package models

import (
	"time"

	"gorm.io/gorm"
)

// Phone представляет личный телефон сотрудника, сдаваемый на хранение
type Phone struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Владелец (связь с Personnel, обязательная)
	OwnerID uint       `json:"owner_id" gorm:"not null;index"`
	Owner   *Personnel `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`

	// Данные телефона
	Model        string `json:"model" gorm:"type:varchar(255)"`
	Color        string `json:"color" gorm:"type:varchar(50)"`
	IMEI1        string `json:"imei_1" gorm:"uniqueIndex;type:varchar(15)"`
	IMEI2        string `json:"imei_2" gorm:"type:varchar(15)"`
	SerialNumber string `json:"serial_number" gorm:"type:varchar(100)"`

	// Функции
	HasCamera   bool `json:"has_camera" gorm:"default:true"`
	HasRecorder bool `json:"has_recorder" gorm:"default:true"`

	// Хранение
	StorageLocation string `json:"storage_location" gorm:"type:varchar(100)"` // Ячейка 15
	Status          string `json:"status" gorm:"default:'issued';type:varchar(50)"` // issued, returned
}

// TableName задает имя таблицы для модели Phone
func (Phone) TableName() string {
	return "phones"
}

// IsCheckedIn проверяет, сдан ли телефон на хранение
func (p *Phone) IsCheckedIn() bool {
	return p.Status == "returned"
}

// GetStatusDisplayName возвращает читаемое название статуса
func (p *Phone) GetStatusDisplayName() string {
	statusMap := map[string]string{
		"issued":   "Выдан",
		"returned": "Сдан",
	}
	if displayName, exists := statusMap[p.Status]; exists {
		return displayName
	}
	return p.Status
}

// PhoneStatusLog представляет запись журнала выдачи/сдачи телефона.
// Каждая смена статуса оставляет ровно одну запись в той же транзакции
type PhoneStatusLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Связь с телефоном
	PhoneID uint   `json:"phone_id" gorm:"not null;index"`
	Phone   *Phone `json:"phone,omitempty" gorm:"foreignKey:PhoneID"`

	// Переход статуса
	FromStatus string `json:"from_status" gorm:"type:varchar(50)"`
	ToStatus   string `json:"to_status" gorm:"not null;type:varchar(50)"`

	// Кто выполнил операцию
	CreatedByID uint  `json:"created_by_id" gorm:"index"`
	CreatedBy   *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// TableName задает имя таблицы для модели PhoneStatusLog
func (PhoneStatusLog) TableName() string {
	return "phone_status_logs"
}
