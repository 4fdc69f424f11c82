package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"backend_zgt/models"
)

// EquipmentService предоставляет бизнес-логику учета вычислительной техники
type EquipmentService struct {
	DB       *gorm.DB
	Settings CustodySettings
}

// NewEquipmentService создает новый экземпляр EquipmentService
func NewEquipmentService(db *gorm.DB, settings CustodySettings) *EquipmentService {
	return &EquipmentService{DB: db, Settings: settings}
}

// EquipmentFilter задает параметры фильтрации списка техники
type EquipmentFilter struct {
	EquipmentType string
	Status        string
	OwnerID       *uint
	Location      string
	IsPersonal    *bool
	Search        string
	Page          int
	PerPage       int
}

// List возвращает список техники с фильтрацией, поиском и пагинацией
func (es *EquipmentService) List(filter EquipmentFilter) ([]models.Equipment, int64, error) {
	query := es.DB.Model(&models.Equipment{}).Preload("CurrentOwner")

	if filter.EquipmentType != "" {
		query = query.Where("equipment_type = ?", filter.EquipmentType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OwnerID != nil {
		query = query.Where("current_owner_id = ?", *filter.OwnerID)
	}
	if filter.Location != "" {
		query = query.Where("LOWER(current_location) LIKE ?", "%"+strings.ToLower(filter.Location)+"%")
	}
	if filter.IsPersonal != nil {
		query = query.Where("is_personal = ?", *filter.IsPersonal)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(inventory_number) LIKE ? OR LOWER(serial_number) LIKE ? OR LOWER(mni_serial_number) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(model) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете техники: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var equipment []models.Equipment
	if err := query.Order("id").Find(&equipment).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка техники: %w", err)
	}

	return equipment, total, nil
}

// GetByID возвращает технику по идентификатору вместе со связями
func (es *EquipmentService) GetByID(id uint) (*models.Equipment, error) {
	var equipment models.Equipment
	if err := es.DB.Preload("CurrentOwner").Preload("StorageDevices").First(&equipment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Техника не найдена")
		}
		return nil, fmt.Errorf("ошибка при получении техники: %w", err)
	}
	return &equipment, nil
}

// Create создает запись о технике. Конфликт инвентарного номера
// возвращается типизированным отказом, а не ошибкой хранилища
func (es *EquipmentService) Create(equipment *models.Equipment) error {
	if err := es.checkInventoryNumber(equipment.InventoryNumber, 0); err != nil {
		return err
	}
	if err := es.DB.Create(equipment).Error; err != nil {
		return translateIdentifierError(err, equipment.InventoryNumber)
	}
	return nil
}

// checkInventoryNumber проверяет занятость инвентарного номера.
// Пустой номер допустим: карточки из импорта заводятся без него
func (es *EquipmentService) checkInventoryNumber(number string, excludeID uint) error {
	if number == "" {
		return nil
	}
	var count int64
	query := es.DB.Model(&models.Equipment{}).Where("inventory_number = ?", number)
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

// Update обновляет карточку техники. Смена владельца и размещения
// выполняется только через CreateMovement, здесь эти поля не трогаются
func (es *EquipmentService) Update(id uint, updates map[string]interface{}) (*models.Equipment, error) {
	equipment, err := es.GetByID(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "current_owner_id")
	delete(updates, "current_location")

	if v, ok := updates["inventory_number"].(string); ok && v != equipment.InventoryNumber {
		if err := es.checkInventoryNumber(v, id); err != nil {
			return nil, err
		}
	}

	if err := es.DB.Model(equipment).Updates(updates).Error; err != nil {
		identifier := equipment.InventoryNumber
		if v, ok := updates["inventory_number"].(string); ok {
			identifier = v
		}
		return nil, translateIdentifierError(err, identifier)
	}
	return equipment, nil
}

// Delete выполняет мягкое удаление техники: строка исключается из выборок,
// но история перемещений сохраняется
func (es *EquipmentService) Delete(id uint) error {
	result := es.DB.Delete(&models.Equipment{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении техники: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("Техника не найдена")
	}
	return nil
}

// MovementInput задает параметры перемещения техники
type MovementInput struct {
	ToLocation      string     `json:"to_location"`
	ToPersonID      *uint      `json:"to_person_id"`
	MovementType    string     `json:"movement_type"` // transfer, return, disposal, repair
	DocumentNumber  string     `json:"document_number"`
	DocumentDate    *time.Time `json:"document_date"`
	Reason          string     `json:"reason"`
	SealNumberAfter string     `json:"seal_number_after"`
	SealStatus      string     `json:"seal_status"`
	CreatedByID     uint       `json:"-"`
}

// Статус техники после перемещения каждого типа
var movementStatus = map[string]string{
	"transfer": "in_service",
	"return":   "in_storage",
	"repair":   "in_repair",
	"disposal": "decommissioned",
}

// CreateMovement выполняет перемещение техники: под блокировкой строки
// создает запись истории и обновляет текущее размещение в одной транзакции.
// Повторное перемещение той же техники внутри окна подавления отклоняется:
// двойной клик и ретрай клиента не плодят дублей в истории
func (es *EquipmentService) CreateMovement(ctx context.Context, equipmentID uint, input MovementInput) (*models.EquipmentMovement, error) {
	var movement *models.EquipmentMovement

	err := runCustodyTransition(ctx, es.DB, es.Settings, func(tx *gorm.DB) error {
		equipment, err := lockByID[models.Equipment](tx, equipmentID)
		if err != nil {
			return fmt.Errorf("ошибка при блокировке техники: %w", err)
		}
		if equipment == nil {
			return NewNotFoundError("Техника не найдена")
		}
		if equipment.Status == "decommissioned" {
			return NewConflictError("Техника списана и не может перемещаться", equipmentID)
		}

		// Окно подавления: любая вторая запись о перемещении той же
		// техники внутри окна считается дублем
		if es.Settings.MovementDedupWindow > 0 {
			var recent int64
			windowStart := time.Now().Add(-es.Settings.MovementDedupWindow)
			if err := tx.Model(&models.EquipmentMovement{}).
				Where("equipment_id = ? AND created_at > ?", equipmentID, windowStart).
				Count(&recent).Error; err != nil {
				return fmt.Errorf("ошибка при проверке недавних перемещений: %w", err)
			}
			if recent > 0 {
				return NewDuplicateMovementError("Перемещение этой техники уже зарегистрировано, повторите позже")
			}
		}

		if input.ToPersonID != nil {
			person, err := lockByID[models.Personnel](tx, *input.ToPersonID)
			if err != nil {
				return fmt.Errorf("ошибка при проверке получателя: %w", err)
			}
			if person == nil {
				return NewNotFoundError("Сотрудник-получатель не найден")
			}
			if !person.IsAvailable() {
				return NewConflictError(fmt.Sprintf("Сотрудник %s не может принимать имущество", person.FullName), person.ID)
			}
		}

		m := models.EquipmentMovement{
			EquipmentID:      equipmentID,
			FromLocation:     equipment.CurrentLocation,
			ToLocation:       input.ToLocation,
			FromPersonID:     equipment.CurrentOwnerID,
			ToPersonID:       input.ToPersonID,
			MovementType:     input.MovementType,
			DocumentNumber:   input.DocumentNumber,
			DocumentDate:     input.DocumentDate,
			Reason:           input.Reason,
			SealNumberBefore: equipment.SealNumber,
			SealNumberAfter:  input.SealNumberAfter,
			SealStatus:       input.SealStatus,
			CreatedByID:      input.CreatedByID,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("ошибка при создании записи перемещения: %w", err)
		}

		updates := map[string]interface{}{
			"current_location": input.ToLocation,
			"current_owner_id": input.ToPersonID,
		}
		if input.SealNumberAfter != "" {
			updates["seal_number"] = input.SealNumberAfter
		}
		if status, ok := movementStatus[input.MovementType]; ok {
			updates["status"] = status
		}
		if err := tx.Model(&models.Equipment{}).Where("id = ?", equipmentID).Updates(updates).Error; err != nil {
			return fmt.Errorf("ошибка при обновлении размещения техники: %w", err)
		}

		movement = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// GetMovementHistory возвращает историю перемещений техники, новые записи первыми
func (es *EquipmentService) GetMovementHistory(equipmentID uint) ([]models.EquipmentMovement, error) {
	var movements []models.EquipmentMovement
	if err := es.DB.Preload("FromPerson").Preload("ToPerson").Preload("CreatedBy").
		Where("equipment_id = ?", equipmentID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении истории перемещений: %w", err)
	}
	return movements, nil
}

// EquipmentStatistics агрегированная статистика по парку техники
type EquipmentStatistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
	Personal int64            `json:"personal"`
}

// GetStatistics возвращает сводку по парку техники
func (es *EquipmentService) GetStatistics() (*EquipmentStatistics, error) {
	stats := &EquipmentStatistics{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	if err := es.DB.Model(&models.Equipment{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете техники: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := es.DB.Model(&models.Equipment{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете по статусам: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	if err := es.DB.Model(&models.Equipment{}).
		Select("equipment_type AS key, COUNT(*) AS count").
		Group("equipment_type").Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете по типам: %w", err)
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	if err := es.DB.Model(&models.Equipment{}).Where("is_personal = ?", true).Count(&stats.Personal).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете личной техники: %w", err)
	}

	return stats, nil
}
