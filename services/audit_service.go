package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// AuditLog модель для аудит логов
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	Action     string    `json:"action" gorm:"not null;index"`
	Resource   string    `json:"resource" gorm:"not null;index"`
	ResourceID *uint     `json:"resource_id" gorm:"index"`
	IPAddress  string    `json:"ip_address" gorm:"size:45"`
	UserAgent  string    `json:"user_agent" gorm:"size:500"`
	Details    string    `json:"details" gorm:"type:text"`
	OldValues  string    `json:"old_values" gorm:"type:text"`
	NewValues  string    `json:"new_values" gorm:"type:text"`
	Success    bool      `json:"success" gorm:"default:true;index"`
	ErrorMsg   string    `json:"error_message" gorm:"size:1000"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// AuditAction типы действий для аудита
type AuditAction string

const (
	// Пользовательские действия
	ActionUserLogin  AuditAction = "user.login"
	ActionUserLogout AuditAction = "user.logout"
	ActionUserCreate AuditAction = "user.create"
	ActionUserUpdate AuditAction = "user.update"
	ActionUserDelete AuditAction = "user.delete"

	// Личный состав
	ActionPersonnelCreate AuditAction = "personnel.create"
	ActionPersonnelUpdate AuditAction = "personnel.update"
	ActionPersonnelDelete AuditAction = "personnel.delete"

	// Техника
	ActionEquipmentCreate AuditAction = "equipment.create"
	ActionEquipmentUpdate AuditAction = "equipment.update"
	ActionEquipmentDelete AuditAction = "equipment.delete"
	ActionEquipmentMove   AuditAction = "equipment.move"
	ActionEquipmentImport AuditAction = "equipment.import"

	// Носители в технике
	ActionStorageDeviceCreate AuditAction = "storage_device.create"
	ActionStorageDeviceUpdate AuditAction = "storage_device.update"
	ActionStorageDeviceDelete AuditAction = "storage_device.delete"

	// Носители и пропуска
	ActionStorageCreate AuditAction = "storage.create"
	ActionStorageUpdate AuditAction = "storage.update"
	ActionStorageDelete AuditAction = "storage.delete"
	ActionStorageAssign AuditAction = "storage.assign"
	ActionStorageRevoke AuditAction = "storage.revoke"

	// Телефоны
	ActionPhoneCreate   AuditAction = "phone.create"
	ActionPhoneUpdate   AuditAction = "phone.update"
	ActionPhoneDelete   AuditAction = "phone.delete"
	ActionPhoneCheckIn  AuditAction = "phone.check_in"
	ActionPhoneCheckOut AuditAction = "phone.check_out"
)

// AuditService сервис для аудит логов
type AuditService struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewAuditService создает новый сервис аудита
func NewAuditService(db *gorm.DB, logger *log.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
	}
}

// AuditContext контекст для аудита
type AuditContext struct {
	UserID     *uint
	Action     AuditAction
	Resource   string
	ResourceID *uint
	IPAddress  string
	UserAgent  string
	OldValues  interface{}
	NewValues  interface{}
	Details    map[string]interface{}
	Success    bool
	ErrorMsg   string
}

// Log записывает аудит лог
func (as *AuditService) Log(ctx AuditContext) error {
	auditLog := &AuditLog{
		UserID:     ctx.UserID,
		Action:     string(ctx.Action),
		Resource:   ctx.Resource,
		ResourceID: ctx.ResourceID,
		IPAddress:  ctx.IPAddress,
		UserAgent:  ctx.UserAgent,
		Success:    ctx.Success,
		ErrorMsg:   ctx.ErrorMsg,
	}

	if ctx.OldValues != nil {
		if data, err := json.Marshal(ctx.OldValues); err == nil {
			auditLog.OldValues = string(data)
		}
	}
	if ctx.NewValues != nil {
		if data, err := json.Marshal(ctx.NewValues); err == nil {
			auditLog.NewValues = string(data)
		}
	}
	if ctx.Details != nil {
		if data, err := json.Marshal(ctx.Details); err == nil {
			auditLog.Details = string(data)
		}
	}

	if err := as.db.Create(auditLog).Error; err != nil {
		if as.logger != nil {
			as.logger.Printf("Ошибка при записи аудит лога: %v", err)
		}
		return fmt.Errorf("ошибка при записи аудит лога: %w", err)
	}

	return nil
}

// LogSuccess записывает успешное действие
func (as *AuditService) LogSuccess(userID *uint, action AuditAction, resource string, resourceID *uint, details map[string]interface{}) {
	if err := as.Log(AuditContext{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		Success:    true,
	}); err != nil && as.logger != nil {
		as.logger.Printf("Ошибка аудита действия %s: %v", action, err)
	}
}

// LogFailure записывает отклоненное или неудачное действие
func (as *AuditService) LogFailure(userID *uint, action AuditAction, resource string, resourceID *uint, errMsg string) {
	if err := as.Log(AuditContext{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Success:    false,
		ErrorMsg:   errMsg,
	}); err != nil && as.logger != nil {
		as.logger.Printf("Ошибка аудита действия %s: %v", action, err)
	}
}

// AuditLogFilter фильтр для выборки аудит логов
type AuditLogFilter struct {
	UserID   *uint
	Action   string
	Resource string
	Success  *bool
	From     *time.Time
	To       *time.Time
	Page     int
	PerPage  int
}

// GetLogs возвращает аудит логи с фильтрацией
func (as *AuditService) GetLogs(filter AuditLogFilter) ([]AuditLog, int64, error) {
	query := as.db.Model(&AuditLog{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при подсчете аудит логов: %w", err)
	}

	if filter.Page > 0 && filter.PerPage > 0 {
		query = query.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var logs []AuditLog
	if err := query.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("ошибка при получении аудит логов: %w", err)
	}

	return logs, total, nil
}

// CleanupOldLogs удаляет аудит логи старше указанного срока
func (as *AuditService) CleanupOldLogs(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := as.db.Where("created_at < ?", cutoff).Delete(&AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("ошибка при очистке аудит логов: %w", result.Error)
	}
	return result.RowsAffected, nil
}
