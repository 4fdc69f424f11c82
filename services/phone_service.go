package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"backend_zgt/models"
)

// PhoneService предоставляет бизнес-логику учета личных телефонов
type PhoneService struct {
	DB       *gorm.DB
	Settings CustodySettings
}

// NewPhoneService создает новый экземпляр PhoneService
func NewPhoneService(db *gorm.DB, settings CustodySettings) *PhoneService {
	return &PhoneService{DB: db, Settings: settings}
}

// PhoneFilter задает параметры фильтрации списка телефонов
type PhoneFilter struct {
	OwnerID *uint
	Status  string
	Search  string
	Page    int
	PerPage int
}

// List возвращает список телефонов с фильтрацией и пагинацией
func (ps *PhoneService) List(filter PhoneFilter) ([]models.Phone, int64, error) {
	query := ps.DB.Model(&models.Phone{}).Preload("Owner")

	if filter.OwnerID != nil {
		query = query.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(model) LIKE ? OR LOWER(imei_1) LIKE ? OR LOWER(imei_2) LIKE ? OR LOWER(serial_number) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете телефонов: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var phones []models.Phone
	if err := query.Order("id").Find(&phones).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка телефонов: %w", err)
	}

	return phones, total, nil
}

// GetByID возвращает телефон по идентификатору
func (ps *PhoneService) GetByID(id uint) (*models.Phone, error) {
	var phone models.Phone
	if err := ps.DB.Preload("Owner").First(&phone, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Телефон не найден")
		}
		return nil, fmt.Errorf("ошибка при получении телефона: %w", err)
	}
	return &phone, nil
}

// Create регистрирует телефон. Владелец обязателен и должен быть в строю
func (ps *PhoneService) Create(phone *models.Phone) error {
	var owner models.Personnel
	if err := ps.DB.First(&owner, phone.OwnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return NewNotFoundError("Владелец телефона не найден")
		}
		return fmt.Errorf("ошибка при проверке владельца: %w", err)
	}
	if !owner.IsAvailable() {
		return NewConflictError(fmt.Sprintf("Сотрудник %s не может регистрировать телефон", owner.FullName), owner.ID)
	}

	if err := ps.DB.Create(phone).Error; err != nil {
		return translateIdentifierError(err, phone.IMEI1)
	}
	return nil
}

// Update обновляет карточку телефона. Статус меняется только пакетными операциями
func (ps *PhoneService) Update(id uint, updates map[string]interface{}) (*models.Phone, error) {
	phone, err := ps.GetByID(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "status")

	if err := ps.DB.Model(phone).Updates(updates).Error; err != nil {
		identifier := phone.IMEI1
		if v, ok := updates["imei_1"].(string); ok {
			identifier = v
		}
		return nil, translateIdentifierError(err, identifier)
	}
	return phone, nil
}

// Delete выполняет мягкое удаление телефона
func (ps *PhoneService) Delete(id uint) error {
	result := ps.DB.Delete(&models.Phone{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении телефона: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("Телефон не найден")
	}
	return nil
}

// BatchCheckIn пакетно принимает телефоны на хранение (issued -> returned).
// Операция атомарна: один отсутствующий или уже сданный телефон отклоняет
// весь пакет, и отказ называет виновные идентификаторы
func (ps *PhoneService) BatchCheckIn(ctx context.Context, ids []uint, createdByID uint) (int, error) {
	return ps.batchTransition(ctx, ids, "issued", "returned", createdByID)
}

// BatchCheckOut пакетно выдает телефоны владельцам (returned -> issued)
func (ps *PhoneService) BatchCheckOut(ctx context.Context, ids []uint, createdByID uint) (int, error) {
	return ps.batchTransition(ctx, ids, "returned", "issued", createdByID)
}

// batchTransition выполняет пакетную смену статуса в две фазы: сначала все
// телефоны пакета блокируются и проверяются, затем одним обновлением
// переводятся в целевой статус. Блокировка идет в порядке возрастания id,
// чтобы пересекающиеся пакеты не взаимоблокировались
func (ps *PhoneService) batchTransition(ctx context.Context, ids []uint, fromStatus, toStatus string, createdByID uint) (int, error) {
	ids = uniqueSortedIDs(ids)
	if len(ids) == 0 {
		return 0, NewConflictError("Пакет телефонов пуст")
	}

	var count int
	err := runCustodyTransition(ctx, ps.DB, ps.Settings, func(tx *gorm.DB) error {
		phones, err := lockAllByIDs[models.Phone](tx, ids)
		if err != nil {
			return fmt.Errorf("ошибка при блокировке телефонов: %w", err)
		}

		if len(phones) != len(ids) {
			found := make(map[uint]struct{}, len(phones))
			for _, p := range phones {
				found[p.ID] = struct{}{}
			}
			var missing []uint
			for _, id := range ids {
				if _, ok := found[id]; !ok {
					missing = append(missing, id)
				}
			}
			return NewNotFoundError(fmt.Sprintf("Телефоны не найдены: %v", missing))
		}

		var wrongStatus []uint
		for _, p := range phones {
			if p.Status != fromStatus {
				wrongStatus = append(wrongStatus, p.ID)
			}
		}
		if len(wrongStatus) > 0 {
			return NewConflictError(fmt.Sprintf("Телефоны уже в целевом статусе: %v", wrongStatus), wrongStatus...)
		}

		if err := tx.Model(&models.Phone{}).Where("id IN ?", ids).
			Update("status", toStatus).Error; err != nil {
			return fmt.Errorf("ошибка при смене статуса телефонов: %w", err)
		}

		logs := make([]models.PhoneStatusLog, 0, len(phones))
		for _, p := range phones {
			logs = append(logs, models.PhoneStatusLog{
				PhoneID:     p.ID,
				FromStatus:  fromStatus,
				ToStatus:    toStatus,
				CreatedByID: createdByID,
			})
		}
		if err := tx.Create(&logs).Error; err != nil {
			return fmt.Errorf("ошибка при записи журнала телефонов: %w", err)
		}

		count = len(phones)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetStatusHistory возвращает журнал смен статуса телефона
func (ps *PhoneService) GetStatusHistory(phoneID uint) ([]models.PhoneStatusLog, error) {
	var logs []models.PhoneStatusLog
	if err := ps.DB.Preload("CreatedBy").
		Where("phone_id = ?", phoneID).
		Order("created_at DESC, id DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала телефона: %w", err)
	}
	return logs, nil
}

// PhoneStatusReport сводка по сдаче телефонов на текущий момент
type PhoneStatusReport struct {
	Total        int64          `json:"total"`
	Returned     int64          `json:"returned"`
	Issued       int64          `json:"issued"`
	NotSubmitted []models.Phone `json:"not_submitted"`
}

// GetStatusReport возвращает отчет о сдаче телефонов: сколько сдано,
// сколько на руках и кто именно еще не сдал
func (ps *PhoneService) GetStatusReport() (*PhoneStatusReport, error) {
	report := &PhoneStatusReport{}

	if err := ps.DB.Model(&models.Phone{}).Count(&report.Total).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете телефонов: %w", err)
	}
	if err := ps.DB.Model(&models.Phone{}).Where("status = ?", "returned").Count(&report.Returned).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете сданных телефонов: %w", err)
	}
	report.Issued = report.Total - report.Returned

	if err := ps.DB.Preload("Owner").Where("status = ?", "issued").
		Order("id").Find(&report.NotSubmitted).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении несданных телефонов: %w", err)
	}

	return report, nil
}
