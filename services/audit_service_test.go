package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAuditServiceTest(t *testing.T) (*gorm.DB, *AuditService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	assert.NoError(t, db.AutoMigrate(&AuditLog{}))

	return db, NewAuditService(db, nil)
}

func TestAuditService_LogAndGetLogs(t *testing.T) {
	_, as := setupAuditServiceTest(t)

	userID := uint(1)
	resourceID := uint(42)

	err := as.Log(AuditContext{
		UserID:     &userID,
		Action:     ActionEquipmentMove,
		Resource:   "equipment",
		ResourceID: &resourceID,
		Details:    map[string]interface{}{"to_location": "Каб. 205"},
		Success:    true,
	})
	assert.NoError(t, err)

	as.LogFailure(&userID, ActionPhoneCheckIn, "phones", nil, "Телефон не найден")

	logs, total, err := as.GetLogs(AuditLogFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, logs, 2)

	// Фильтр по действию
	logs, total, err = as.GetLogs(AuditLogFilter{Action: string(ActionEquipmentMove)})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "equipment", logs[0].Resource)
	assert.True(t, logs[0].Success)
	assert.Contains(t, logs[0].Details, "Каб. 205")

	// Фильтр по результату
	failed := false
	logs, total, err = as.GetLogs(AuditLogFilter{Success: &failed})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Телефон не найден", logs[0].ErrorMsg)
}

func TestAuditService_CleanupOldLogs(t *testing.T) {
	db, as := setupAuditServiceTest(t)

	userID := uint(1)
	as.LogSuccess(&userID, ActionUserLogin, "auth", nil, nil)
	as.LogSuccess(&userID, ActionUserLogin, "auth", nil, nil)

	// Состариваем одну запись за пределы срока хранения
	var old AuditLog
	db.First(&old)
	db.Model(&AuditLog{}).Where("id = ?", old.ID).
		Update("created_at", time.Now().Add(-48*time.Hour))

	removed, err := as.CleanupOldLogs(24 * time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	var remaining int64
	db.Model(&AuditLog{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}
