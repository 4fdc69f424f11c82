package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Индексы под регистронезависимый поиск по основным полям картотек.
// AutoMigrate такие выражения не описывает, поэтому создаем их вручную
var searchIndexes = []struct {
	Name string
	SQL  string
}{
	{"idx_equipment_inventory_lower", "CREATE INDEX IF NOT EXISTS idx_equipment_inventory_lower ON equipment (LOWER(inventory_number))"},
	// Инвентарные номера уникальны, только когда заполнены: карточки
	// из импорта заводятся без номера
	{"uq_equipment_inventory_number", "CREATE UNIQUE INDEX IF NOT EXISTS uq_equipment_inventory_number ON equipment (inventory_number) WHERE inventory_number <> '' AND deleted_at IS NULL"},
	{"uq_storage_devices_inventory_number", "CREATE UNIQUE INDEX IF NOT EXISTS uq_storage_devices_inventory_number ON storage_devices (inventory_number) WHERE inventory_number <> '' AND deleted_at IS NULL"},
	{"idx_equipment_serial_lower", "CREATE INDEX IF NOT EXISTS idx_equipment_serial_lower ON equipment (LOWER(serial_number))"},
	{"idx_equipment_model_lower", "CREATE INDEX IF NOT EXISTS idx_equipment_model_lower ON equipment (LOWER(model))"},
	{"idx_personnel_full_name_lower", "CREATE INDEX IF NOT EXISTS idx_personnel_full_name_lower ON personnel (LOWER(full_name))"},
	// Личный номер уникален, только когда заполнен: записи из импорта
	// заводятся без номера
	{"uq_personnel_personal_number", "CREATE UNIQUE INDEX IF NOT EXISTS uq_personnel_personal_number ON personnel (personal_number) WHERE personal_number <> ''"},
	{"idx_storage_serial_lower", "CREATE INDEX IF NOT EXISTS idx_storage_serial_lower ON storage_and_passes (LOWER(serial_number))"},
	{"idx_phones_imei_lower", "CREATE INDEX IF NOT EXISTS idx_phones_imei_lower ON phones (LOWER(imei_1))"},
	{"idx_movements_equipment_created", "CREATE INDEX IF NOT EXISTS idx_movements_equipment_created ON equipment_movements (equipment_id, created_at)"},
}

// CreateSearchIndexes создает функциональные индексы поиска.
// Выполняется только на PostgreSQL: SQLite в тестах обходится без них
func CreateSearchIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, idx := range searchIndexes {
		if err := db.Exec(idx.SQL).Error; err != nil {
			return fmt.Errorf("ошибка создания индекса %s: %w", idx.Name, err)
		}
	}

	log.Println("✅ Индексы поиска созданы")
	return nil
}
