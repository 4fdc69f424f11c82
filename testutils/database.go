package testutils

import (
	"backend_zgt/models"
	"backend_zgt/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB создает и настраивает тестовую базу данных в памяти.
// Эта функция должна использоваться во всех тестах для обеспечения консистентности.
// TranslateError включен, как и в боевом подключении: конфликты уникальных
// индексов приходят как gorm.ErrDuplicatedKey
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Выполняем миграции в правильном порядке
	err = db.AutoMigrate(
		// Базовые модели
		&models.User{},
		&models.Personnel{},

		// Техника
		&models.Equipment{},
		&models.EquipmentMovement{},
		&models.StorageDevice{},

		// Носители и пропуска
		&models.StorageAndPass{},
		&models.StorageAssignment{},

		// Телефоны
		&models.Phone{},
		&models.PhoneStatusLog{},

		// Аудит
		&services.AuditLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
