package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustodySettings задает политики движка владения. Значения окна подавления
// и бюджета блокировки вынесены в настройки, а не зашиты в код
type CustodySettings struct {
	MovementDedupWindow time.Duration // Окно подавления повторного перемещения техники
	LockTimeout         time.Duration // Бюджет ожидания блокировки строки актива
}

// DefaultCustodySettings возвращает настройки движка по умолчанию
func DefaultCustodySettings() CustodySettings {
	return CustodySettings{
		MovementDedupWindow: 5 * time.Minute,
		LockTimeout:         5 * time.Second,
	}
}

// runCustodyTransition выполняет переход владения в одной транзакции.
// Любая ошибка внутри fn откатывает и смену состояния, и запись журнала:
// частичное применение невозможно. Контекст ограничивает ожидание блокировки:
// по истечении бюджета операция завершается отказом lock_timeout без
// каких-либо эффектов
func runCustodyTransition(ctx context.Context, db *gorm.DB, settings CustodySettings, fn func(tx *gorm.DB) error) error {
	if settings.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.LockTimeout)
		defer cancel()
	}

	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}

	// Бизнес-отказы возвращаем как есть, транзакция уже откачена
	if _, ok := AsCustodyError(err); ok {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || isLockNotAvailable(err) {
		return NewLockTimeoutError("Не удалось получить блокировку актива, повторите попытку")
	}

	return err
}

// isLockNotAvailable распознает отказ PostgreSQL в выдаче блокировки (55P03)
func isLockNotAvailable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "55P03")
}

// lockForUpdate применяет эксклюзивную блокировку строки для диалектов,
// которые ее поддерживают. SQLite не знает FOR UPDATE: там пишущая
// транзакция и так единственная
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockByID загружает строку модели под эксклюзивной блокировкой.
// Возвращает (nil, nil), если строка не найдена или списана:
// перевод решения «не найдено» в отказ остается за вызывающим
func lockByID[T any](tx *gorm.DB, id uint) (*T, error) {
	var row T
	if err := lockForUpdate(tx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// lockAllByIDs загружает набор строк под блокировкой строго в порядке
// возрастания id, чтобы два пересекающихся пакета не взаимоблокировались
func lockAllByIDs[T any](tx *gorm.DB, ids []uint) ([]T, error) {
	var rows []T
	if err := lockForUpdate(tx).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// uniqueSortedIDs убирает дубликаты и сортирует идентификаторы по возрастанию
func uniqueSortedIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
