package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupCustodyTest(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Personnel{},
		&models.Equipment{},
		&models.EquipmentMovement{},
	)
	assert.NoError(t, err)

	return db
}

func TestRunCustodyTransition_RollbackOnError(t *testing.T) {
	db := setupCustodyTest(t)

	// Запись внутри транзакции с последующей ошибкой не должна сохраниться
	err := runCustodyTransition(context.Background(), db, DefaultCustodySettings(), func(tx *gorm.DB) error {
		equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-1"}
		if err := tx.Create(&equipment).Error; err != nil {
			return err
		}
		return fmt.Errorf("искусственный сбой")
	})
	assert.Error(t, err)

	var count int64
	db.Model(&models.Equipment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRunCustodyTransition_CustodyErrorPassesThrough(t *testing.T) {
	db := setupCustodyTest(t)

	err := runCustodyTransition(context.Background(), db, DefaultCustodySettings(), func(tx *gorm.DB) error {
		return NewConflictError("актив уже выдан", 7)
	})

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)
	assert.Equal(t, []uint{7}, ce.IDs)
	assert.False(t, ce.Retryable())
}

func TestRunCustodyTransition_DeadlineBecomesLockTimeout(t *testing.T) {
	db := setupCustodyTest(t)

	err := runCustodyTransition(context.Background(), db, CustodySettings{LockTimeout: 0}, func(tx *gorm.DB) error {
		return context.DeadlineExceeded
	})

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionLockTimeout, ce.Code)
	assert.True(t, ce.Retryable())
}

func TestLockByID_NotFound(t *testing.T) {
	db := setupCustodyTest(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		equipment, err := lockByID[models.Equipment](tx, 999)
		assert.NoError(t, err)
		assert.Nil(t, equipment)
		return nil
	})
	assert.NoError(t, err)
}

func TestLockAllByIDs_AscendingOrder(t *testing.T) {
	db := setupCustodyTest(t)

	for i := 0; i < 3; i++ {
		db.Create(&models.Equipment{EquipmentType: "АРМ", InventoryNumber: fmt.Sprintf("INV-%d", i)})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		rows, err := lockAllByIDs[models.Equipment](tx, []uint{3, 1, 2})
		assert.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, uint(1), rows[0].ID)
		assert.Equal(t, uint(2), rows[1].ID)
		assert.Equal(t, uint(3), rows[2].ID)
		return nil
	})
	assert.NoError(t, err)
}

func TestUniqueSortedIDs(t *testing.T) {
	assert.Equal(t, []uint{1, 2, 5}, uniqueSortedIDs([]uint{5, 2, 1, 2, 5}))
	assert.Empty(t, uniqueSortedIDs(nil))
}
