package services

import (
	"fmt"
	"log"
	"strings"
)

// NotificationService отправляет служебные уведомления в Telegram
type NotificationService struct {
	telegram *TelegramClient
	chatID   string
	phones   *PhoneService
	logger   *log.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
// telegram может быть nil: тогда уведомления только логируются
func NewNotificationService(telegram *TelegramClient, chatID string, phones *PhoneService, logger *log.Logger) *NotificationService {
	return &NotificationService{
		telegram: telegram,
		chatID:   chatID,
		phones:   phones,
		logger:   logger,
	}
}

// SendPhoneReminder отправляет напоминание о несданных телефонах.
// Вызывается планировщиком в конце рабочего дня
func (ns *NotificationService) SendPhoneReminder() error {
	report, err := ns.phones.GetStatusReport()
	if err != nil {
		return fmt.Errorf("ошибка при формировании отчета по телефонам: %w", err)
	}

	if report.Issued == 0 {
		if ns.logger != nil {
			ns.logger.Println("Все телефоны сданы, напоминание не требуется")
		}
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📱 <b>Несданные телефоны: %d из %d</b>\n\n", report.Issued, report.Total))
	for _, phone := range report.NotSubmitted {
		owner := "—"
		if phone.Owner != nil {
			owner = phone.Owner.FullName
		}
		sb.WriteString(fmt.Sprintf("• %s — %s\n", owner, phone.Model))
	}

	return ns.send(sb.String())
}

// SendCustodyAlert отправляет уведомление о событии учета (перемещение,
// выдача, списание)
func (ns *NotificationService) SendCustodyAlert(title, details string) error {
	return ns.send(fmt.Sprintf("📦 <b>%s</b>\n\n%s", title, details))
}

func (ns *NotificationService) send(message string) error {
	if ns.telegram == nil || ns.chatID == "" {
		if ns.logger != nil {
			ns.logger.Printf("Telegram не настроен, уведомление пропущено: %s", message)
		}
		return nil
	}

	if _, err := ns.telegram.SendMessage(ns.chatID, message); err != nil {
		if ns.logger != nil {
			ns.logger.Printf("Ошибка отправки уведомления в Telegram: %v", err)
		}
		return err
	}
	return nil
}
