package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupStorageServiceTest(t *testing.T) (*gorm.DB, *StorageAndPassService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Personnel{},
		&models.StorageAndPass{},
		&models.StorageAssignment{},
	)
	assert.NoError(t, err)

	return db, NewStorageAndPassService(db, DefaultCustodySettings())
}

func TestStorageAndPassService_AssignRevokeRoundTrip(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	person := models.Personnel{FullName: "Сидоров Сидор Сидорович", Status: "active"}
	db.Create(&person)

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-001", Status: "stock"}
	db.Create(&asset)

	// Выдача
	issued, err := ss.Assign(context.Background(), asset.ID, person.ID, "служебная необходимость", 1)
	assert.NoError(t, err)
	assert.Equal(t, "in_use", issued.Status)
	assert.Equal(t, person.ID, *issued.AssignedToID)
	assert.NotNil(t, issued.IssueDate)
	assert.Nil(t, issued.ReturnDate)

	// Возврат
	returned, err := ss.Revoke(context.Background(), asset.ID, "", 1)
	assert.NoError(t, err)
	assert.Equal(t, "stock", returned.Status)
	assert.Nil(t, returned.AssignedToID)
	assert.NotNil(t, returned.ReturnDate)

	// Журнал содержит обе операции
	history, err := ss.GetAssignmentHistory(asset.ID)
	assert.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, "revoke", history[0].Action)
	assert.Equal(t, "assign", history[1].Action)
}

func TestStorageAndPassService_AssignAlreadyIssued(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	holder := models.Personnel{FullName: "Первый Держатель", Status: "active"}
	db.Create(&holder)
	other := models.Personnel{FullName: "Второй Претендент", Status: "active"}
	db.Create(&other)

	asset := models.StorageAndPass{AssetType: "electronic_pass", SerialNumber: "EP-001", Status: "stock"}
	db.Create(&asset)

	_, err := ss.Assign(context.Background(), asset.ID, holder.ID, "", 1)
	assert.NoError(t, err)

	// Повторная выдача другому сотруднику отклоняется
	_, err = ss.Assign(context.Background(), asset.ID, other.ID, "", 1)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)

	// Держатель не сменился
	var current models.StorageAndPass
	db.First(&current, asset.ID)
	assert.Equal(t, holder.ID, *current.AssignedToID)
}

func TestStorageAndPassService_RevokeNotIssued(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-002", Status: "stock"}
	db.Create(&asset)

	_, err := ss.Revoke(context.Background(), asset.ID, "", 1)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)

	// Отказ не оставил записей в журнале
	var logCount int64
	db.Model(&models.StorageAssignment{}).Count(&logCount)
	assert.Equal(t, int64(0), logCount)
}

func TestStorageAndPassService_AssignToInactivePersonnel(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	person := models.Personnel{FullName: "Уволенный Сотрудник", Status: "dismissed"}
	db.Create(&person)

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-003", Status: "stock"}
	db.Create(&asset)

	_, err := ss.Assign(context.Background(), asset.ID, person.ID, "", 1)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)
	assert.Equal(t, []uint{person.ID}, ce.IDs)
}

func TestStorageAndPassService_AssignBrokenAsset(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	person := models.Personnel{FullName: "Активный Сотрудник", Status: "active"}
	db.Create(&person)

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-004", Status: "broken"}
	db.Create(&asset)

	_, err := ss.Assign(context.Background(), asset.ID, person.ID, "", 1)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)
}

func TestStorageAndPassService_CreateDuplicateSerial(t *testing.T) {
	_, ss := setupStorageServiceTest(t)

	first := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-005", Status: "stock"}
	assert.NoError(t, ss.Create(&first))

	second := models.StorageAndPass{AssetType: "electronic_pass", SerialNumber: "FD-005", Status: "stock"}
	err := ss.Create(&second)

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionIdentifierCollision, ce.Code)
}

func TestStorageAndPassService_ConcurrentAssignSingleWinner(t *testing.T) {
	// База в файле: транзакции из разных горутин, _txlock=immediate
	// сериализует писателей и сохраняет схему «захватил - проверил»
	dsn := "file:" + filepath.Join(t.TempDir(), "custody.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Personnel{},
		&models.StorageAndPass{},
		&models.StorageAssignment{},
	)
	assert.NoError(t, err)

	settings := CustodySettings{
		MovementDedupWindow: 5 * time.Minute,
		LockTimeout:         10 * time.Second,
	}
	ss := NewStorageAndPassService(db, settings)

	const workers = 8
	personIDs := make([]uint, 0, workers)
	for i := 0; i < workers; i++ {
		person := models.Personnel{FullName: fmt.Sprintf("Претендент %d", i+1), Status: "active"}
		assert.NoError(t, db.Create(&person).Error)
		personIDs = append(personIDs, person.ID)
	}

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-100", Status: "stock"}
	assert.NoError(t, db.Create(&asset).Error)

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for _, personID := range personIDs {
		wg.Add(1)
		go func(personID uint) {
			defer wg.Done()
			_, err := ss.Assign(context.Background(), asset.ID, personID, "", 1)
			results <- err
		}(personID)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		ce, ok := AsCustodyError(err)
		assert.True(t, ok, "неожиданная ошибка: %v", err)
		assert.Equal(t, RejectionConflict, ce.Code)
		conflicts++
	}

	// Ровно один победитель, остальные получили конфликт
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	var current models.StorageAndPass
	assert.NoError(t, db.First(&current, asset.ID).Error)
	assert.Equal(t, "in_use", current.Status)
	assert.NotNil(t, current.AssignedToID)

	// Проигравшие попытки не оставили записей в журнале
	var logCount int64
	db.Model(&models.StorageAssignment{}).Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestStorageAndPassService_UpdateProtectsCustodyFields(t *testing.T) {
	db, ss := setupStorageServiceTest(t)

	person := models.Personnel{FullName: "Держатель", Status: "active"}
	db.Create(&person)

	asset := models.StorageAndPass{AssetType: "flash_drive", SerialNumber: "FD-006", Status: "stock"}
	db.Create(&asset)

	// Попытка подменить держателя через общее обновление игнорируется
	_, err := ss.Update(asset.ID, map[string]interface{}{
		"notes":          "обновлено",
		"assigned_to_id": person.ID,
	})
	assert.NoError(t, err)

	var current models.StorageAndPass
	db.First(&current, asset.ID)
	assert.Nil(t, current.AssignedToID)
	assert.Equal(t, "обновлено", current.Notes)
}
