package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backend_zgt/models"
)

func setupPersonnelServiceTest(t *testing.T) (*gorm.DB, *PersonnelService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&models.Personnel{},
		&models.Phone{},
		&models.Equipment{},
		&models.StorageAndPass{},
	)
	assert.NoError(t, err)

	return db, NewPersonnelService(db)
}

func TestPersonnelService_ListOrderedByRank(t *testing.T) {
	db, ps := setupPersonnelServiceTest(t)

	db.Create(&models.Personnel{FullName: "Рядовой Боец", Rank: "рядовой", RankPriority: 1, Status: "active"})
	db.Create(&models.Personnel{FullName: "Майор Начальник", Rank: "майор", RankPriority: 12, Status: "active"})
	db.Create(&models.Personnel{FullName: "Капитан Командир", Rank: "капитан", RankPriority: 11, Status: "active"})

	personnel, total, err := ps.List(PersonnelFilter{})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "Майор Начальник", personnel[0].FullName)
	assert.Equal(t, "Капитан Командир", personnel[1].FullName)
	assert.Equal(t, "Рядовой Боец", personnel[2].FullName)
}

func TestPersonnelService_ListSearch(t *testing.T) {
	db, ps := setupPersonnelServiceTest(t)

	db.Create(&models.Personnel{FullName: "Иванов Иван Иванович", Status: "active"})
	db.Create(&models.Personnel{FullName: "Петров Петр Петрович", Status: "active"})

	personnel, total, err := ps.List(PersonnelFilter{Search: "иванов"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Иванов Иван Иванович", personnel[0].FullName)
}

func TestPersonnelService_CreateDuplicatePersonalNumber(t *testing.T) {
	_, ps := setupPersonnelServiceTest(t)

	first := models.Personnel{FullName: "Первый", PersonalNumber: "А-123456"}
	assert.NoError(t, ps.Create(&first))

	second := models.Personnel{FullName: "Второй", PersonalNumber: "А-123456"}
	err := ps.Create(&second)

	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionIdentifierCollision, ce.Code)
}

func TestPersonnelService_CreateEmptyPersonalNumbersAllowed(t *testing.T) {
	_, ps := setupPersonnelServiceTest(t)

	// Записи из импорта заводятся без личного номера
	assert.NoError(t, ps.Create(&models.Personnel{FullName: "Первый без номера"}))
	assert.NoError(t, ps.Create(&models.Personnel{FullName: "Второй без номера"}))
}

func TestPersonnelService_GetUnits(t *testing.T) {
	db, ps := setupPersonnelServiceTest(t)

	db.Create(&models.Personnel{FullName: "Первый", Unit: "1 отдел"})
	db.Create(&models.Personnel{FullName: "Второй", Unit: "2 отдел"})
	db.Create(&models.Personnel{FullName: "Третий", Unit: "1 отдел"})
	db.Create(&models.Personnel{FullName: "Без подразделения"})

	units, err := ps.GetUnits()
	assert.NoError(t, err)
	assert.Equal(t, []string{"1 отдел", "2 отдел"}, units)
}

func TestPersonnelService_DeleteKeepsAssignedProperty(t *testing.T) {
	db, ps := setupPersonnelServiceTest(t)

	person := models.Personnel{FullName: "Увольняемый", Status: "active"}
	db.Create(&person)

	phone := models.Phone{OwnerID: person.ID, Model: "Samsung A54", IMEI1: "356800000000010", Status: "issued"}
	db.Create(&phone)

	assert.NoError(t, ps.Delete(person.ID))

	// Сотрудник скрыт из выборок
	_, err := ps.GetByID(person.ID)
	ce, ok := AsCustodyError(err)
	assert.True(t, ok)
	assert.Equal(t, RejectionNotFound, ce.Code)

	// Телефон продолжает ссылаться на него
	var kept models.Phone
	db.First(&kept, phone.ID)
	assert.Equal(t, person.ID, kept.OwnerID)
}
