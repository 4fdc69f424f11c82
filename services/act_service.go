package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"backend_zgt/models"
)

// ActService формирует печатные акты приема-передачи техники
type ActService struct {
	DB *gorm.DB
}

// NewActService создает новый экземпляр ActService
func NewActService(db *gorm.DB) *ActService {
	return &ActService{DB: db}
}

// GenerateActNumber возвращает уникальный номер акта
func GenerateActNumber() string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("АКТ-%s-%s", time.Now().Format("20060102"), suffix)
}

// GenerateMovementAct формирует PDF акта приема-передачи по записи
// перемещения. Запись перемещения не изменяется: если номер документа
// не был указан при перемещении, акт получает сгенерированный номер
// только в самом PDF
func (as *ActService) GenerateMovementAct(movementID uint) ([]byte, string, error) {
	var movement models.EquipmentMovement
	if err := as.DB.Preload("Equipment").Preload("FromPerson").Preload("ToPerson").Preload("CreatedBy").
		First(&movement, movementID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", NewNotFoundError("Перемещение не найдено")
		}
		return nil, "", fmt.Errorf("ошибка при получении перемещения: %w", err)
	}

	actNumber := movement.DocumentNumber
	if actNumber == "" {
		actNumber = GenerateActNumber()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("АКТ ПРИЕМА-ПЕРЕДАЧИ ТЕХНИКИ"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("№ %s от %s", actNumber, movement.CreatedAt.Format("02.01.2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	writeRow := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 7, tr(label), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, tr(value), "1", 1, "L", false, 0, "")
	}

	if movement.Equipment != nil {
		eq := movement.Equipment
		writeRow("Тип техники", eq.EquipmentType)
		writeRow("Инвентарный номер", eq.InventoryNumber)
		writeRow("Серийный номер", eq.SerialNumber)
		writeRow("Производитель / модель", strings.TrimSpace(eq.Manufacturer+" "+eq.Model))
	}

	writeRow("Тип перемещения", movement.GetTypeDisplayName())
	writeRow("Откуда", movement.FromLocation)
	writeRow("Куда", movement.ToLocation)

	fromName := "—"
	if movement.FromPerson != nil {
		fromName = movement.FromPerson.FullName
	}
	toName := "—"
	if movement.ToPerson != nil {
		toName = movement.ToPerson.FullName
	}
	writeRow("Сдал", fromName)
	writeRow("Принял", toName)

	if movement.Reason != "" {
		writeRow("Причина", movement.Reason)
	}
	if movement.SealNumberAfter != "" {
		writeRow("Пломба", movement.SealNumberAfter)
	}

	pdf.Ln(14)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, tr("Сдал: _______________ / "+fromName), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Принял: _______________ / "+toName), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("ошибка при формировании PDF акта: %w", err)
	}

	filename := fmt.Sprintf("act_%d.pdf", movement.ID)
	return buf.Bytes(), filename, nil
}
