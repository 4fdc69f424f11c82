package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"backend_zgt/models"
)

// StorageDeviceService предоставляет бизнес-логику учета носителей,
// установленных в технику
type StorageDeviceService struct {
	DB *gorm.DB
}

// NewStorageDeviceService создает новый экземпляр StorageDeviceService
func NewStorageDeviceService(db *gorm.DB) *StorageDeviceService {
	return &StorageDeviceService{DB: db}
}

// StorageDeviceFilter задает параметры фильтрации списка носителей
type StorageDeviceFilter struct {
	EquipmentID *uint
	DeviceType  string
	Status      string
	Search      string
	Page        int
	PerPage     int
}

// List возвращает список носителей с фильтрацией и пагинацией
func (sd *StorageDeviceService) List(filter StorageDeviceFilter) ([]models.StorageDevice, int64, error) {
	query := sd.DB.Model(&models.StorageDevice{}).Preload("Equipment")

	if filter.EquipmentID != nil {
		query = query.Where("equipment_id = ?", *filter.EquipmentID)
	}
	if filter.DeviceType != "" {
		query = query.Where("device_type = ?", filter.DeviceType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(inventory_number) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(model) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете носителей: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var devices []models.StorageDevice
	if err := query.Order("id").Find(&devices).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка носителей: %w", err)
	}

	return devices, total, nil
}

// GetByID возвращает носитель по идентификатору
func (sd *StorageDeviceService) GetByID(id uint) (*models.StorageDevice, error) {
	var device models.StorageDevice
	if err := sd.DB.Preload("Equipment").First(&device, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Носитель не найден")
		}
		return nil, fmt.Errorf("ошибка при получении носителя: %w", err)
	}
	return &device, nil
}

// Create создает запись о носителе. Привязка к технике проверяется:
// носитель нельзя установить в несуществующий компьютер
func (sd *StorageDeviceService) Create(device *models.StorageDevice) error {
	if err := sd.checkEquipment(device.EquipmentID); err != nil {
		return err
	}
	if err := sd.checkInventoryNumber(device.InventoryNumber, 0); err != nil {
		return err
	}
	if err := sd.DB.Create(device).Error; err != nil {
		return translateIdentifierError(err, device.InventoryNumber)
	}
	return nil
}

// Update обновляет карточку носителя, включая перестановку в другую технику
func (sd *StorageDeviceService) Update(id uint, updates map[string]interface{}) (*models.StorageDevice, error) {
	device, err := sd.GetByID(id)
	if err != nil {
		return nil, err
	}

	if raw, ok := updates["equipment_id"]; ok && raw != nil {
		equipmentID, ok := toUintValue(raw)
		if !ok {
			return nil, NewConflictError("Некорректный идентификатор техники")
		}
		if err := sd.checkEquipment(&equipmentID); err != nil {
			return nil, err
		}
	}
	if v, ok := updates["inventory_number"].(string); ok && v != device.InventoryNumber {
		if err := sd.checkInventoryNumber(v, id); err != nil {
			return nil, err
		}
	}

	if err := sd.DB.Model(device).Updates(updates).Error; err != nil {
		return nil, translateIdentifierError(err, device.InventoryNumber)
	}
	return device, nil
}

// Delete выполняет мягкое удаление носителя
func (sd *StorageDeviceService) Delete(id uint) error {
	result := sd.DB.Delete(&models.StorageDevice{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении носителя: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("Носитель не найден")
	}
	return nil
}

func (sd *StorageDeviceService) checkEquipment(equipmentID *uint) error {
	if equipmentID == nil {
		return nil
	}
	var count int64
	if err := sd.DB.Model(&models.Equipment{}).Where("id = ?", *equipmentID).Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке техники: %w", err)
	}
	if count == 0 {
		return NewNotFoundError("Техника не найдена")
	}
	return nil
}

func (sd *StorageDeviceService) checkInventoryNumber(number string, excludeID uint) error {
	if number == "" {
		return nil
	}
	var count int64
	query := sd.DB.Model(&models.StorageDevice{}).Where("inventory_number = ?", number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке инвентарного номера: %w", err)
	}
	if count > 0 {
		return NewIdentifierCollisionError(fmt.Sprintf("Номер %s уже существует", number))
	}
	return nil
}

// toUintValue приводит значение из JSON-карты обновлений к uint
func toUintValue(raw interface{}) (uint, bool) {
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
