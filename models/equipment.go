package models

import (
	"time"

	"gorm.io/gorm"
)

// Equipment представляет вычислительную технику (АРМ, ноутбук, сервер, принтер)
type Equipment struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Тип техники
	EquipmentType string `json:"equipment_type" gorm:"not null;type:varchar(50)"` // АРМ, Ноутбук, Сервер, Принтер

	// Идентификация
	InventoryNumber string `json:"inventory_number" gorm:"index;type:varchar(100)"` // Инвентарный номер
	SerialNumber    string `json:"serial_number" gorm:"index;type:varchar(100)"`
	MNISerialNumber string `json:"mni_serial_number" gorm:"type:varchar(100)"` // Серийный номер МНИ

	// Характеристики
	Manufacturer string `json:"manufacturer" gorm:"type:varchar(100)"`
	Model        string `json:"model" gorm:"type:varchar(255)"`

	// Процессор и память
	CPU   string `json:"cpu" gorm:"type:varchar(255)"`
	RAMGb int    `json:"ram_gb"`

	// Хранение данных
	StorageType       string `json:"storage_type" gorm:"type:varchar(50)"` // HDD, SSD, NVMe
	StorageCapacityGb int    `json:"storage_capacity_gb"`

	// Дополнительно
	HasOpticalDrive bool   `json:"has_optical_drive" gorm:"default:false"`
	HasCardReader   bool   `json:"has_card_reader" gorm:"default:false"`
	OperatingSystem string `json:"operating_system" gorm:"type:varchar(100)"`

	// Текущее размещение: владелец хранится ссылкой, никогда копией
	CurrentOwnerID  *uint      `json:"current_owner_id"`
	CurrentOwner    *Personnel `json:"current_owner,omitempty" gorm:"foreignKey:CurrentOwnerID"`
	CurrentLocation string     `json:"current_location" gorm:"type:varchar(255)"` // Каб. 205, Склад №1

	// Пломбы
	SealNumber      string     `json:"seal_number" gorm:"type:varchar(100)"`
	SealInstallDate *time.Time `json:"seal_install_date"`
	SealStatus      string     `json:"seal_status" gorm:"default:'intact';type:varchar(50)"` // intact, damaged, missing
	SealCheckDate   *time.Time `json:"seal_check_date"`

	// Статус
	Status string `json:"status" gorm:"default:'in_service';type:varchar(50)"` // in_service, in_storage, in_repair, decommissioned

	// Личная техника (ноутбуки сотрудников)
	IsPersonal bool `json:"is_personal" gorm:"default:false;index"`

	// Примечания
	Notes string `json:"notes" gorm:"type:text"`

	// Связи
	MovementHistory []EquipmentMovement `json:"movement_history,omitempty" gorm:"foreignKey:EquipmentID"`
	StorageDevices  []StorageDevice     `json:"storage_devices,omitempty" gorm:"foreignKey:EquipmentID"`
}

// TableName задает имя таблицы для модели Equipment
func (Equipment) TableName() string {
	return "equipment"
}

// IsInService проверяет, находится ли техника в эксплуатации
func (e *Equipment) IsInService() bool {
	return e.Status == "in_service"
}

// GetStatusDisplayName возвращает читаемое название статуса
func (e *Equipment) GetStatusDisplayName() string {
	statusMap := map[string]string{
		"in_service":     "В работе",
		"in_storage":     "На складе",
		"in_repair":      "В ремонте",
		"decommissioned": "Списана",
	}
	if displayName, exists := statusMap[e.Status]; exists {
		return displayName
	}
	return e.Status
}

// GetSealStatusDisplayName возвращает читаемое состояние пломбы
func (e *Equipment) GetSealStatusDisplayName() string {
	sealMap := map[string]string{
		"intact":  "Исправна",
		"damaged": "Повреждена",
		"missing": "Отсутствует",
	}
	if displayName, exists := sealMap[e.SealStatus]; exists {
		return displayName
	}
	return e.SealStatus
}

// EquipmentMovement представляет запись истории перемещений техники.
// Записи создаются только внутри транзакции перемещения и никогда не изменяются
type EquipmentMovement struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	// Связь с техникой
	EquipmentID uint       `json:"equipment_id" gorm:"not null;index"`
	Equipment   *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`

	// Откуда/Куда
	FromLocation string `json:"from_location" gorm:"type:varchar(255)"`
	ToLocation   string `json:"to_location" gorm:"type:varchar(255)"`

	// Ответственные
	FromPersonID *uint      `json:"from_person_id"`
	FromPerson   *Personnel `json:"from_person,omitempty" gorm:"foreignKey:FromPersonID"`
	ToPersonID   *uint      `json:"to_person_id"`
	ToPerson     *Personnel `json:"to_person,omitempty" gorm:"foreignKey:ToPersonID"`

	// Документ
	MovementType   string     `json:"movement_type" gorm:"type:varchar(50)"` // transfer, return, disposal, repair
	DocumentNumber string     `json:"document_number" gorm:"type:varchar(100)"`
	DocumentDate   *time.Time `json:"document_date"`

	// Причина перемещения
	Reason string `json:"reason" gorm:"type:text"`

	// Пломба при передаче
	SealNumberBefore string `json:"seal_number_before" gorm:"type:varchar(100)"`
	SealNumberAfter  string `json:"seal_number_after" gorm:"type:varchar(100)"`
	SealStatus       string `json:"seal_status" gorm:"type:varchar(50)"`

	// Кто выполнил перемещение
	CreatedByID uint  `json:"created_by_id" gorm:"index"`
	CreatedBy   *User `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

// TableName задает имя таблицы для модели EquipmentMovement
func (EquipmentMovement) TableName() string {
	return "equipment_movements"
}

// GetTypeDisplayName возвращает читаемое название типа перемещения
func (em *EquipmentMovement) GetTypeDisplayName() string {
	typeMap := map[string]string{
		"transfer": "Передача",
		"return":   "Возврат",
		"disposal": "Списание",
		"repair":   "Ремонт",
	}
	if displayName, exists := typeMap[em.MovementType]; exists {
		return displayName
	}
	return em.MovementType
}

// StorageDevice представляет съемный носитель информации, закрепленный за техникой
type StorageDevice struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Связь с компьютером (nil, если носитель на складе)
	EquipmentID *uint      `json:"equipment_id" gorm:"index"`
	Equipment   *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`

	// Тип носителя
	DeviceType string `json:"device_type" gorm:"not null;type:varchar(50)"` // HDD, SSD, NVMe, USB Flash

	// Идентификация
	InventoryNumber string `json:"inventory_number" gorm:"index;type:varchar(100)"`
	SerialNumber    string `json:"serial_number" gorm:"index;type:varchar(100)"`

	// Характеристики
	Manufacturer string `json:"manufacturer" gorm:"type:varchar(100)"`
	Model        string `json:"model" gorm:"type:varchar(255)"`
	CapacityGb   int    `json:"capacity_gb"`
	Interface    string `json:"interface" gorm:"type:varchar(50)"` // SATA, NVMe, USB 3.0

	// Статус и размещение
	Status   string `json:"status" gorm:"default:'in_service';type:varchar(50)"` // in_service, in_storage, decommissioned
	Location string `json:"location" gorm:"type:varchar(255)"`

	// Примечания
	Notes string `json:"notes" gorm:"type:text"`
}

// TableName задает имя таблицы для модели StorageDevice
func (StorageDevice) TableName() string {
	return "storage_devices"
}
