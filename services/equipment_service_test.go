package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupEquipmentServiceTest(t *testing.T) (*gorm.DB, *EquipmentService) {
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
		&models.StorageDevice{},
	)
	assert.NoError(t, err)

	return db, NewEquipmentService(db, DefaultCustodySettings())
}

func TestEquipmentService_CreateDuplicateInventoryNumber(t *testing.T) {
	_, es := setupEquipmentServiceTest(t)

	first := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-100"}
	assert.NoError(t, es.Create(&first))

	second := models.Equipment{EquipmentType: "Ноутбук", InventoryNumber: "INV-100"}
	err := es.Create(&second)

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionIdentifierCollision, ce.Code)
}

func TestEquipmentService_CreateMovement(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	person := models.Personnel{FullName: "Иванов Иван Иванович", Status: "active"}
	db.Create(&person)

	equipment := models.Equipment{
		EquipmentType:   "АРМ",
		InventoryNumber: "INV-200",
		CurrentLocation: "Склад №1",
		Status:          "in_storage",
	}
	db.Create(&equipment)

	movement, err := es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 205",
		ToPersonID:   &person.ID,
		MovementType: "transfer",
		Reason:       "Выдача на рабочее место",
		CreatedByID:  1,
	})
	assert.NoError(t, err)
	assert.Equal(t, "Склад №1", movement.FromLocation)
	assert.Equal(t, "Каб. 205", movement.ToLocation)

	// Состояние техники обновлено в той же транзакции
	var updated models.Equipment
	db.First(&updated, equipment.ID)
	assert.Equal(t, "Каб. 205", updated.CurrentLocation)
	assert.NotNil(t, updated.CurrentOwnerID)
	assert.Equal(t, person.ID, *updated.CurrentOwnerID)
	assert.Equal(t, "in_service", updated.Status)

	var historyCount int64
	db.Model(&models.EquipmentMovement{}).Where("equipment_id = ?", equipment.ID).Count(&historyCount)
	assert.Equal(t, int64(1), historyCount)
}

func TestEquipmentService_CreateMovementDuplicateWindow(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-300", CurrentLocation: "Склад №1"}
	db.Create(&equipment)

	first, err := es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 101",
		MovementType: "transfer",
	})
	assert.NoError(t, err)

	// Повторное перемещение внутри окна отклоняется
	_, err = es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 102",
		MovementType: "transfer",
	})
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionDuplicateMovement, ce.Code)

	// Отодвигаем предыдущую запись за пределы окна - перемещение проходит
	db.Model(&models.EquipmentMovement{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-10*time.Minute))

	_, err = es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 102",
		MovementType: "transfer",
	})
	assert.NoError(t, err)
}

func TestEquipmentService_CreateMovementInactiveRecipient(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	person := models.Personnel{FullName: "Петров Петр Петрович", Status: "dismissed"}
	db.Create(&person)

	equipment := models.Equipment{EquipmentType: "Ноутбук", InventoryNumber: "INV-400"}
	db.Create(&equipment)

	_, err := es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 101",
		ToPersonID:   &person.ID,
		MovementType: "transfer",
	})

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)
	assert.Equal(t, []uint{person.ID}, ce.IDs)

	// Отказ не оставил следов ни в истории, ни в карточке
	var historyCount int64
	db.Model(&models.EquipmentMovement{}).Count(&historyCount)
	assert.Equal(t, int64(0), historyCount)
}

func TestEquipmentService_CreateMovementNotFound(t *testing.T) {
	_, es := setupEquipmentServiceTest(t)

	_, err := es.CreateMovement(context.Background(), 999, MovementInput{
		ToLocation:   "Каб. 101",
		MovementType: "transfer",
	})

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionNotFound, ce.Code)
}

func TestEquipmentService_CreateMovementDecommissioned(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-500", Status: "decommissioned"}
	db.Create(&equipment)

	_, err := es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 101",
		MovementType: "transfer",
	})

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionConflict, ce.Code)
}

func TestEquipmentService_ListWithSearch(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	db.Create(&models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-600", Model: "Aquarius Pro"})
	db.Create(&models.Equipment{EquipmentType: "Ноутбук", InventoryNumber: "INV-601", Model: "ThinkPad"})

	equipment, total, err := es.List(EquipmentFilter{Search: "aquarius"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, equipment, 1)
	assert.Equal(t, "INV-600", equipment[0].InventoryNumber)
}

func TestEquipmentService_DeleteKeepsHistory(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-700"}
	db.Create(&equipment)

	_, err := es.CreateMovement(context.Background(), equipment.ID, MovementInput{
		ToLocation:   "Каб. 101",
		MovementType: "transfer",
	})
	assert.NoError(t, err)

	assert.NoError(t, es.Delete(equipment.ID))

	// Карточка скрыта из выборок
	_, err = es.GetByID(equipment.ID)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionNotFound, ce.Code)

	// История перемещений не переписана
	var historyCount int64
	db.Model(&models.EquipmentMovement{}).Where("equipment_id = ?", equipment.ID).Count(&historyCount)
	assert.Equal(t, int64(1), historyCount)
}

func TestEquipmentService_GetStatistics(t *testing.T) {
	db, es := setupEquipmentServiceTest(t)

	db.Create(&models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-800", Status: "in_service"})
	db.Create(&models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-801", Status: "in_storage"})
	db.Create(&models.Equipment{EquipmentType: "Ноутбук", InventoryNumber: "INV-802", Status: "in_service", IsPersonal: true})

	stats, err := es.GetStatistics()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByStatus["in_service"])
	assert.Equal(t, int64(2), stats.ByType["АРМ"])
	assert.Equal(t, int64(1), stats.Personal)
}
