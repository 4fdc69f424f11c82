package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"backend_zgt/models"
)

// StorageAndPassService предоставляет бизнес-логику учета носителей и пропусков
type StorageAndPassService struct {
	DB       *gorm.DB
	Settings CustodySettings
}

// NewStorageAndPassService создает новый экземпляр StorageAndPassService
func NewStorageAndPassService(db *gorm.DB, settings CustodySettings) *StorageAndPassService {
	return &StorageAndPassService{DB: db, Settings: settings}
}

// StorageAndPassFilter задает параметры фильтрации списка активов
type StorageAndPassFilter struct {
	AssetType    string
	Status       string
	AssignedToID *uint
	Search       string
	Page         int
	PerPage      int
}

// List возвращает список активов с фильтрацией и пагинацией
func (ss *StorageAndPassService) List(filter StorageAndPassFilter) ([]models.StorageAndPass, int64, error) {
	query := ss.DB.Model(&models.StorageAndPass{}).Preload("AssignedTo")

	if filter.AssetType != "" {
		query = query.Where("asset_type = ?", filter.AssetType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filter.AssignedToID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(serial_number) LIKE ? OR LOWER(model) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(notes) LIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете активов: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var assets []models.StorageAndPass
	if err := query.Order("id").Find(&assets).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении списка активов: %w", err)
	}

	return assets, total, nil
}

// GetByID возвращает актив по идентификатору
func (ss *StorageAndPassService) GetByID(id uint) (*models.StorageAndPass, error) {
	var asset models.StorageAndPass
	if err := ss.DB.Preload("AssignedTo").First(&asset, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, NewNotFoundError("Актив не найден")
		}
		return nil, fmt.Errorf("ошибка при получении актива: %w", err)
	}
	return &asset, nil
}

// Create создает запись об активе
func (ss *StorageAndPassService) Create(asset *models.StorageAndPass) error {
	if err := ss.DB.Create(asset).Error; err != nil {
		return translateIdentifierError(err, asset.SerialNumber)
	}
	return nil
}

// Update обновляет карточку актива. Держатель и статус выдачи
// изменяются только через Assign/Revoke
func (ss *StorageAndPassService) Update(id uint, updates map[string]interface{}) (*models.StorageAndPass, error) {
	asset, err := ss.GetByID(id)
	if err != nil {
		return nil, err
	}

	delete(updates, "assigned_to_id")
	delete(updates, "issue_date")
	delete(updates, "return_date")

	if err := ss.DB.Model(asset).Updates(updates).Error; err != nil {
		identifier := asset.SerialNumber
		if v, ok := updates["serial_number"].(string); ok {
			identifier = v
		}
		return nil, translateIdentifierError(err, identifier)
	}
	return asset, nil
}

// Delete выполняет мягкое удаление актива
func (ss *StorageAndPassService) Delete(id uint) error {
	result := ss.DB.Delete(&models.StorageAndPass{}, id)
	if result.Error != nil {
		return fmt.Errorf("ошибка при удалении актива: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("Актив не найден")
	}
	return nil
}

// Assign выдает актив сотруднику. Инвариант единственного держателя
// обеспечивается блокировкой строки: второй конкурентный Assign увидит
// уже выданный актив и получит отказ conflict
func (ss *StorageAndPassService) Assign(ctx context.Context, assetID uint, personID uint, notes string, createdByID uint) (*models.StorageAndPass, error) {
	var updated *models.StorageAndPass

	err := runCustodyTransition(ctx, ss.DB, ss.Settings, func(tx *gorm.DB) error {
		asset, err := lockByID[models.StorageAndPass](tx, assetID)
		if err != nil {
			return fmt.Errorf("ошибка при блокировке актива: %w", err)
		}
		if asset == nil {
			return NewNotFoundError("Актив не найден")
		}
		if asset.IsIssued() {
			return NewConflictError(fmt.Sprintf("Актив %s уже выдан", asset.SerialNumber), assetID)
		}
		if asset.Status == "broken" || asset.Status == "lost" {
			return NewConflictError(fmt.Sprintf("Актив %s не может быть выдан: %s", asset.SerialNumber, asset.GetStatusDisplayName()), assetID)
		}

		person, err := lockByID[models.Personnel](tx, personID)
		if err != nil {
			return fmt.Errorf("ошибка при проверке сотрудника: %w", err)
		}
		if person == nil {
			return NewNotFoundError("Сотрудник не найден")
		}
		if !person.IsAvailable() {
			return NewConflictError(fmt.Sprintf("Сотрудник %s не может принимать имущество", person.FullName), personID)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":         "in_use",
			"assigned_to_id": personID,
			"issue_date":     now,
			"return_date":    nil,
		}
		if err := tx.Model(&models.StorageAndPass{}).Where("id = ?", assetID).Updates(updates).Error; err != nil {
			return fmt.Errorf("ошибка при выдаче актива: %w", err)
		}

		assignment := models.StorageAssignment{
			AssetID:     assetID,
			Action:      "assign",
			PersonID:    &personID,
			Notes:       notes,
			CreatedByID: createdByID,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("ошибка при создании записи выдачи: %w", err)
		}

		asset.Status = "in_use"
		asset.AssignedToID = &personID
		asset.IssueDate = &now
		asset.ReturnDate = nil
		updated = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Revoke принимает актив обратно от текущего держателя
func (ss *StorageAndPassService) Revoke(ctx context.Context, assetID uint, notes string, createdByID uint) (*models.StorageAndPass, error) {
	var updated *models.StorageAndPass

	err := runCustodyTransition(ctx, ss.DB, ss.Settings, func(tx *gorm.DB) error {
		asset, err := lockByID[models.StorageAndPass](tx, assetID)
		if err != nil {
			return fmt.Errorf("ошибка при блокировке актива: %w", err)
		}
		if asset == nil {
			return NewNotFoundError("Актив не найден")
		}
		if !asset.IsIssued() {
			return NewConflictError(fmt.Sprintf("Актив %s не выдан на руки", asset.SerialNumber), assetID)
		}

		holderID := asset.AssignedToID
		now := time.Now()
		updates := map[string]interface{}{
			"status":         "stock",
			"assigned_to_id": nil,
			"return_date":    now,
		}
		if err := tx.Model(&models.StorageAndPass{}).Where("id = ?", assetID).Updates(updates).Error; err != nil {
			return fmt.Errorf("ошибка при возврате актива: %w", err)
		}

		assignment := models.StorageAssignment{
			AssetID:     assetID,
			Action:      "revoke",
			PersonID:    holderID,
			Notes:       notes,
			CreatedByID: createdByID,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return fmt.Errorf("ошибка при создании записи возврата: %w", err)
		}

		asset.Status = "stock"
		asset.AssignedToID = nil
		asset.ReturnDate = &now
		updated = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetAssignmentHistory возвращает журнал выдач и возвратов актива
func (ss *StorageAndPassService) GetAssignmentHistory(assetID uint) ([]models.StorageAssignment, error) {
	var assignments []models.StorageAssignment
	if err := ss.DB.Preload("Person").Preload("CreatedBy").
		Where("asset_id = ?", assetID).
		Order("created_at DESC, id DESC").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("ошибка при получении журнала выдач: %w", err)
	}
	return assignments, nil
}

// StorageAndPassStatistics агрегированная статистика по активам
type StorageAndPassStatistics struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}

// GetStatistics возвращает сводку по носителям и пропускам
func (ss *StorageAndPassService) GetStatistics() (*StorageAndPassStatistics, error) {
	stats := &StorageAndPassStatistics{
		ByStatus: make(map[string]int64),
		ByType:   make(map[string]int64),
	}

	if err := ss.DB.Model(&models.StorageAndPass{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете активов: %w", err)
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byStatus []bucket
	if err := ss.DB.Model(&models.StorageAndPass{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете по статусам: %w", err)
	}
	for _, b := range byStatus {
		stats.ByStatus[b.Key] = b.Count
	}

	var byType []bucket
	if err := ss.DB.Model(&models.StorageAndPass{}).
		Select("asset_type AS key, COUNT(*) AS count").
		Group("asset_type").Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("ошибка при подсчете по типам: %w", err)
	}
	for _, b := range byType {
		stats.ByType[b.Key] = b.Count
	}

	return stats, nil
}
