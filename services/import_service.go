package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"backend_zgt/models"
)

// ImportService загружает карточки техники из файлов Excel
type ImportService struct {
	DB *gorm.DB
}

// NewImportService создает новый экземпляр ImportService
func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{DB: db}
}

// ImportResult итоги импорта
type ImportResult struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Ожидаемые заголовки листа импорта ноутбуков
const (
	importColSerial       = "S/N"
	importColModel        = "Модель"
	importColManufacturer = "Производитель"
	importColOwner        = "ФИО Ответственного"
	importColRank         = "Звание"
	importColStatus       = "СТАТУС"
	importColCondition    = "Состояние"
	importColKit          = "Комплектация"
	importColComment      = "Примечание"
)

// ImportLaptops импортирует ноутбуки с первого листа xlsx-файла.
// Строки сопоставляются по серийному номеру: существующие карточки
// обновляются, новые создаются. Ответственный подтягивается из картотеки
// по ФИО или заводится новой записью. Весь файл применяется одной
// транзакцией: битый файл не оставляет половины строк
func (is *ImportService) ImportLaptops(r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка при открытии файла импорта: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("файл импорта не содержит листов")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении листа импорта: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("файл импорта пуст")
	}

	// Первая строка - заголовки
	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[normalizeImportText(header)] = i
	}
	if _, ok := columns[importColSerial]; !ok {
		return nil, fmt.Errorf("в файле импорта нет колонки %q", importColSerial)
	}

	result := &ImportResult{}

	err = is.DB.Transaction(func(tx *gorm.DB) error {
		for rowIdx, row := range rows[1:] {
			cell := func(name string) string {
				idx, ok := columns[name]
				if !ok || idx >= len(row) {
					return ""
				}
				return normalizeImportText(row[idx])
			}

			serialNumber := cell(importColSerial)
			if serialNumber == "" {
				result.Skipped++
				continue
			}

			if err := is.importLaptopRow(tx, cell, serialNumber, result); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", rowIdx+2, err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка при импорте ноутбуков: %w", err)
	}

	return result, nil
}

func (is *ImportService) importLaptopRow(tx *gorm.DB, cell func(string) string, serialNumber string, result *ImportResult) error {
	var equipment models.Equipment
	err := tx.Where("serial_number = ?", serialNumber).First(&equipment).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		equipment = models.Equipment{SerialNumber: serialNumber}
		result.Inserted++
	case err != nil:
		return fmt.Errorf("ошибка поиска по серийному номеру: %w", err)
	default:
		result.Updated++
	}

	var ownerID *uint
	if ownerName := cell(importColOwner); ownerName != "" {
		owner, err := is.findOrCreatePersonnel(tx, ownerName, cell(importColRank))
		if err != nil {
			return err
		}
		ownerID = &owner.ID
	}

	status := "in_service"
	location := "Выдан"
	if cell(importColStatus) == "На складе" {
		status = "in_storage"
		location = "Склад"
	}

	var notesParts []string
	for _, part := range []string{cell(importColCondition), cell(importColKit), cell(importColComment)} {
		if part != "" {
			notesParts = append(notesParts, part)
		}
	}

	equipment.EquipmentType = "Ноутбук"
	equipment.Manufacturer = cell(importColManufacturer)
	equipment.Model = cell(importColModel)
	equipment.Status = status
	equipment.CurrentLocation = location
	equipment.CurrentOwnerID = ownerID
	equipment.IsPersonal = false
	equipment.Notes = strings.Join(notesParts, " | ")

	if err := tx.Save(&equipment).Error; err != nil {
		return fmt.Errorf("ошибка сохранения карточки: %w", err)
	}
	return nil
}

// findOrCreatePersonnel ищет сотрудника по ФИО, при отсутствии создает запись
func (is *ImportService) findOrCreatePersonnel(tx *gorm.DB, fullName, rank string) (*models.Personnel, error) {
	var person models.Personnel
	err := tx.Where("full_name = ?", fullName).First(&person).Error
	if err == nil {
		if rank != "" && person.Rank == "" {
			if err := tx.Model(&person).Update("rank", rank).Error; err != nil {
				return nil, fmt.Errorf("ошибка обновления звания: %w", err)
			}
		}
		return &person, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("ошибка поиска сотрудника: %w", err)
	}

	person = models.Personnel{FullName: fullName, Rank: rank}
	if err := tx.Create(&person).Error; err != nil {
		return nil, fmt.Errorf("ошибка создания сотрудника: %w", err)
	}
	return &person, nil
}

// normalizeImportText убирает неразрывные пробелы и края строки
func normalizeImportText(value string) string {
	return strings.TrimSpace(strings.ReplaceAll(value, "\u00a0", " "))
}
