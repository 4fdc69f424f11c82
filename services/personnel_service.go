package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"backend_zgt/models"
)

// PersonnelService предоставляет бизнес-логику учета личного состава
type PersonnelService struct {
	DB *gorm.DB
}

// NewPersonnelService создает новый экземпляр PersonnelService
func NewPersonnelService(db *gorm.DB) *PersonnelService {
	return &PersonnelService{DB: db}
}

// PersonnelFilter задает параметры фильтрации списка сотрудников
type PersonnelFilter struct {
	Unit    string
	Status  string
	Search  string
	Page    int
	PerPage int
}

// List возвращает список сотрудников, отсортированный по старшинству звания
func (ps *PersonnelService) List(filter PersonnelFilter) ([]models.Personnel, int64, error) {
	query := ps.DB.Model(&models.Personnel{})

	if filter.Unit != "" {
		query = query.Where("unit = ?", filter.Unit)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(personal_number) LIKE ? OR LOWER(position) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете сотрудников: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var personnel []models.Personnel
	if err := query.Order("rank_priority DESC, full_name").Find(&personnel).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка сотрудников: %w", err)
	}

	return personnel, total, nil
}

// GetByID возвращает сотрудника вместе с закрепленным имуществом
func (ps *PersonnelService) GetByID(id uint) (*models.Personnel, error) {
	var person models.Personnel
	if err := ps.DB.Preload("Phones").Preload("Equipment").Preload("StorageItems").
		First(&person, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Сотрудник не найден")
		}
		return nil, fmt.Errorf("ошибка при получении сотрудника: %w", err)
	}
	return &person, nil
}

// Create создает запись о сотруднике
func (ps *PersonnelService) Create(person *models.Personnel) error {
	if err := ps.checkPersonalNumber(person.PersonalNumber, 0); err != nil {
		return err
	}
	if err := ps.DB.Create(person).Error; err != nil {
		return translateIdentifierError(err, person.PersonalNumber)
	}
	return nil
}

// checkPersonalNumber проверяет занятость личного номера.
// Пустой номер допустим: записи из импорта заводятся без него
func (ps *PersonnelService) checkPersonalNumber(number string, excludeID uint) error {
	if number == "" {
		return nil
	}
	var count int64
	query := ps.DB.Model(&models.Personnel{}).Where("personal_number = ?", number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("ошибка при проверке личного номера: %w", err)
	}
	if count > 0 {
		return NewIdentifierCollisionError(fmt.Sprintf("Номер %s уже существует", number))
	}
	return nil
}

// Update обновляет карточку сотрудника
func (ps *PersonnelService) Update(id uint, updates map[string]interface{}) (*models.Personnel, error) {
	var person models.Personnel
	if err := ps.DB.First(&person, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Сотрудник не найден")
		}
		return nil, fmt.Errorf("ошибка при получении сотрудника: %w", err)
	}

	if v, ok := updates["personal_number"].(string); ok && v != person.PersonalNumber {
		if err := ps.checkPersonalNumber(v, id); err != nil {
			return nil, err
		}
	}

	if err := ps.DB.Model(&person).Updates(updates).Error; err != nil {
		identifier := person.PersonalNumber
		if v, ok := updates["personal_number"].(string); ok {
			identifier = v
		}
		return nil, translateIdentifierError(err, identifier)
	}
	return &person, nil
}

// Delete выполняет мягкое удаление сотрудника. Закрепленное за ним имущество
// сохраняет ссылки: история владения не переписывается задним числом
func (ps *PersonnelService) Delete(id uint) error {
	result := ps.DB.Delete(&models.Personnel{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении сотрудника: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("Сотрудник не найден")
	}
	return nil
}

// GetUnits возвращает список подразделений, встречающихся в картотеке
func (ps *PersonnelService) GetUnits() ([]string, error) {
	var units []string
	if err := ps.DB.Model(&models.Personnel{}).
		Where("unit <> ''").
		Distinct("unit").
		Order("unit").
		Pluck("unit", &units).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении подразделений: %w", err)
	}
	return units, nil
}
