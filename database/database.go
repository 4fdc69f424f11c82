package database

import (
	"database/sql"
	"fmt"
	"log"

	"backend_zgt/config"
	"backend_zgt/models"
	"backend_zgt/services"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// CreateDatabaseIfNotExists создает базу данных, если она не существует
func CreateDatabaseIfNotExists(cfg *config.Config) error {
	// Подключаемся к PostgreSQL без указания конкретной БД (к postgres по умолчанию)
	adminDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.SSLMode)

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к PostgreSQL: %w", err)
	}
	defer db.Close()

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		return fmt.Errorf("не удалось проверить подключение к PostgreSQL: %w", err)
	}

	// Проверяем, существует ли база данных
	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1);"
	err = db.QueryRow(query, cfg.Database.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("ошибка при проверке существования базы данных: %w", err)
	}

	if exists {
		log.Printf("✅ База данных '%s' уже существует", cfg.Database.Name)
		return nil
	}

	// Создаем базу данных
	createQuery := fmt.Sprintf("CREATE DATABASE %s;", cfg.Database.Name)
	_, err = db.Exec(createQuery)
	if err != nil {
		return fmt.Errorf("не удалось создать базу данных '%s': %w", cfg.Database.Name, err)
	}

	log.Printf("✅ База данных '%s' успешно создана", cfg.Database.Name)
	return nil
}

// ConnectDatabase инициализирует подключение к PostgreSQL.
// TranslateError включен: нарушения уникальных индексов приходят
// как gorm.ErrDuplicatedKey и переводятся в типизированные отказы
func ConnectDatabase(cfg *config.Config) error {
	logLevel := logger.Warn
	if cfg.App.Debug {
		logLevel = logger.Info
	}

	var err error
	DB, err = gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("не удалось получить пул соединений: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Println("✅ Успешно подключено к PostgreSQL")

	// Автомиграция моделей
	if err := AutoMigrate(DB); err != nil {
		return fmt.Errorf("ошибка автомиграции: %w", err)
	}

	// Индексы для поиска
	if err := CreateSearchIndexes(DB); err != nil {
		return fmt.Errorf("ошибка создания индексов: %w", err)
	}

	return nil
}

// GetDB возвращает экземпляр базы данных
func GetDB() *gorm.DB {
	return DB
}

// AutoMigrate выполняет автомиграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Personnel{},
		&models.Equipment{},
		&models.EquipmentMovement{},
		&models.StorageDevice{},
		&models.StorageAndPass{},
		&models.StorageAssignment{},
		&models.Phone{},
		&models.PhoneStatusLog{},
		&services.AuditLog{},
	)
	if err != nil {
		return err
	}

	log.Println("✅ Автомиграция моделей выполнена успешно")
	return nil
}
