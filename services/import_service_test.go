package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupImportServiceTest(t *testing.T) (*gorm.DB, *ImportService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.Personnel{},
		&models.Equipment{},
	)
	assert.NoError(t, err)

	return db, NewImportService(db)
}

func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Reader {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"S/N", "Модель", "Производитель", "ФИО Ответственного", "Звание", "СТАТУС", "Состояние", "Комплектация", "Примечание"}
	assert.NoError(t, f.SetSheetRow(sheet, "A1", &header))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		assert.NoError(t, err)
		assert.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestImportService_ImportLaptops(t *testing.T) {
	db, is := setupImportServiceTest(t)

	file := buildImportFile(t, [][]interface{}{
		{"SN-001", "ThinkPad T14", "Lenovo", "Иванов Иван Иванович", "капитан", "Выдан", "Исправен", "БП, мышь", ""},
		{"SN-002", "Latitude 5520", "Dell", "", "", "На складе", "", "", "Резерв"},
		{"", "Без серийника", "NoName", "", "", "", "", "", ""},
	})

	result, err := is.ImportLaptops(file)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	// Выданный ноутбук закреплен за сотрудником из картотеки
	var issued models.Equipment
	assert.NoError(t, db.Where("serial_number = ?", "SN-001").First(&issued).Error)
	assert.Equal(t, "Ноутбук", issued.EquipmentType)
	assert.Equal(t, "in_service", issued.Status)
	assert.Equal(t, "Выдан", issued.CurrentLocation)
	assert.NotNil(t, issued.CurrentOwnerID)
	assert.Equal(t, "Исправен | БП, мышь", issued.Notes)

	var owner models.Personnel
	assert.NoError(t, db.First(&owner, *issued.CurrentOwnerID).Error)
	assert.Equal(t, "Иванов Иван Иванович", owner.FullName)
	assert.Equal(t, "капитан", owner.Rank)

	// Складской ноутбук без ответственного
	var stored models.Equipment
	assert.NoError(t, db.Where("serial_number = ?", "SN-002").First(&stored).Error)
	assert.Equal(t, "in_storage", stored.Status)
	assert.Equal(t, "Склад", stored.CurrentLocation)
	assert.Nil(t, stored.CurrentOwnerID)
}

func TestImportService_ImportLaptops_UpdatesExistingBySerial(t *testing.T) {
	db, is := setupImportServiceTest(t)

	existing := models.Equipment{EquipmentType: "Ноутбук", SerialNumber: "SN-100", Model: "Старая модель", Status: "in_service"}
	db.Create(&existing)

	file := buildImportFile(t, [][]interface{}{
		{"SN-100", "Новая модель", "HP", "", "", "На складе", "", "", ""},
	})

	result, err := is.ImportLaptops(file)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 1, result.Updated)

	// Повторный импорт не плодит дублей карточек
	var count int64
	db.Model(&models.Equipment{}).Where("serial_number = ?", "SN-100").Count(&count)
	assert.Equal(t, int64(1), count)

	var updated models.Equipment
	db.First(&updated, existing.ID)
	assert.Equal(t, "Новая модель", updated.Model)
	assert.Equal(t, "in_storage", updated.Status)
}

func TestImportService_ImportLaptops_BackfillsRank(t *testing.T) {
	db, is := setupImportServiceTest(t)

	person := models.Personnel{FullName: "Петров Петр Петрович", Status: "active"}
	db.Create(&person)

	file := buildImportFile(t, [][]interface{}{
		{"SN-200", "EliteBook", "HP", "Петров Петр Петрович", "майор", "Выдан", "", "", ""},
	})

	_, err := is.ImportLaptops(file)
	assert.NoError(t, err)

	// Звание подтянуто в существующую запись, новая не создана
	var count int64
	db.Model(&models.Personnel{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var updated models.Personnel
	db.First(&updated, person.ID)
	assert.Equal(t, "майор", updated.Rank)
}

func TestImportService_ImportLaptops_MissingSerialColumn(t *testing.T) {
	_, is := setupImportServiceTest(t)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Модель", "Производитель"}
	assert.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []interface{}{"ThinkPad", "Lenovo"}
	assert.NoError(t, f.SetSheetRow(sheet, "A2", &row))

	buf, err := f.WriteToBuffer()
	assert.NoError(t, err)

	_, err = is.ImportLaptops(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}
