package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupStorageDeviceServiceTest(t *testing.T) (*gorm.DB, *StorageDeviceService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.Personnel{},
		&models.Equipment{},
		&models.StorageDevice{},
	)
	assert.NoError(t, err)

	return db, NewStorageDeviceService(db)
}

func TestStorageDeviceService_CreateAttachedToEquipment(t *testing.T) {
	db, sd := setupStorageDeviceServiceTest(t)

	equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-1000"}
	db.Create(&equipment)

	device := models.StorageDevice{
		EquipmentID:     &equipment.ID,
		DeviceType:      "SSD",
		InventoryNumber: "MNI-001",
		SerialNumber:    "SSD-SN-001",
		CapacityGb:      512,
	}
	assert.NoError(t, sd.Create(&device))

	loaded, err := sd.GetByID(device.ID)
	assert.NoError(t, err)
	assert.NotNil(t, loaded.Equipment)
	assert.Equal(t, "INV-1000", loaded.Equipment.InventoryNumber)
}

func TestStorageDeviceService_CreateRejectsMissingEquipment(t *testing.T) {
	_, sd := setupStorageDeviceServiceTest(t)

	missing := uint(999)
	device := models.StorageDevice{EquipmentID: &missing, DeviceType: "HDD", SerialNumber: "HDD-SN-001"}
	err := sd.Create(&device)

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionNotFound, ce.Code)
}

func TestStorageDeviceService_CreateDuplicateInventoryNumber(t *testing.T) {
	_, sd := setupStorageDeviceServiceTest(t)

	first := models.StorageDevice{DeviceType: "SSD", InventoryNumber: "MNI-002"}
	assert.NoError(t, sd.Create(&first))

	second := models.StorageDevice{DeviceType: "HDD", InventoryNumber: "MNI-002"}
	err := sd.Create(&second)

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionIdentifierCollision, ce.Code)
}

func TestStorageDeviceService_UpdateMoveToAnotherEquipment(t *testing.T) {
	db, sd := setupStorageDeviceServiceTest(t)

	first := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-1001"}
	db.Create(&first)
	second := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-1002"}
	db.Create(&second)

	device := models.StorageDevice{EquipmentID: &first.ID, DeviceType: "SSD", SerialNumber: "SSD-SN-002"}
	assert.NoError(t, sd.Create(&device))

	// Перестановка в существующую технику проходит
	_, err := sd.Update(device.ID, map[string]interface{}{
		"equipment_id": float64(second.ID),
	})
	assert.NoError(t, err)

	var moved models.StorageDevice
	db.First(&moved, device.ID)
	assert.Equal(t, second.ID, *moved.EquipmentID)

	// Перестановка в несуществующую отклоняется
	_, err = sd.Update(device.ID, map[string]interface{}{
		"equipment_id": float64(999),
	})
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionNotFound, ce.Code)
}

func TestStorageDeviceService_ListByEquipment(t *testing.T) {
	db, sd := setupStorageDeviceServiceTest(t)

	equipment := models.Equipment{EquipmentType: "АРМ", InventoryNumber: "INV-1003"}
	db.Create(&equipment)

	db.Create(&models.StorageDevice{EquipmentID: &equipment.ID, DeviceType: "SSD", SerialNumber: "SSD-SN-003"})
	db.Create(&models.StorageDevice{EquipmentID: &equipment.ID, DeviceType: "HDD", SerialNumber: "HDD-SN-003"})
	db.Create(&models.StorageDevice{DeviceType: "USB Flash", SerialNumber: "USB-SN-003"})

	devices, total, err := sd.List(StorageDeviceFilter{EquipmentID: &equipment.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, devices, 2)
}
