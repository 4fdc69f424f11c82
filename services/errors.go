package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// RejectionCode тип кода отказа бизнес-правила движка учета
type RejectionCode string

const (
	// Актив или сотрудник не существует либо списан
	RejectionNotFound RejectionCode = "not_found"
	// Нарушение инварианта: актив уже выдан, не выдан, уже в целевом статусе
	RejectionConflict RejectionCode = "conflict"
	// Повторное перемещение того же актива внутри окна подавления
	RejectionDuplicateMovement RejectionCode = "duplicate_movement"
	// Нарушение уникальности инвентарного/серийного номера на уровне БД
	RejectionIdentifierCollision RejectionCode = "identifier_collision"
	// Блокировка строки не получена в отведенный бюджет, можно повторить
	RejectionLockTimeout RejectionCode = "lock_timeout"
)

// CustodyError представляет типизированный отказ перехода владения.
// Бизнес-отказы всегда возвращаются этим типом, «сырые» ошибки хранилища
// наружу не выходят
type CustodyError struct {
	Code    RejectionCode `json:"code"`
	Message string        `json:"message"`
	IDs     []uint        `json:"ids,omitempty"` // Идентификаторы, из-за которых отклонена операция
}

// Error реализует интерфейс error
func (e *CustodyError) Error() string {
	return e.Message
}

// Retryable сообщает, имеет ли смысл повторить операцию без изменений
func (e *CustodyError) Retryable() bool {
	return e.Code == RejectionLockTimeout
}

// NewNotFoundError создает отказ «не найдено»
func NewNotFoundError(message string) *CustodyError {
	return &CustodyError{Code: RejectionNotFound, Message: message}
}

// NewConflictError создает отказ по нарушению инварианта
func NewConflictError(message string, ids ...uint) *CustodyError {
	return &CustodyError{Code: RejectionConflict, Message: message, IDs: ids}
}

// NewDuplicateMovementError создает отказ по повторному перемещению
func NewDuplicateMovementError(message string) *CustodyError {
	return &CustodyError{Code: RejectionDuplicateMovement, Message: message}
}

// NewIdentifierCollisionError создает отказ по конфликту идентификатора
func NewIdentifierCollisionError(message string) *CustodyError {
	return &CustodyError{Code: RejectionIdentifierCollision, Message: message}
}

// NewLockTimeoutError создает повторяемый отказ по таймауту блокировки
func NewLockTimeoutError(message string) *CustodyError {
	return &CustodyError{Code: RejectionLockTimeout, Message: message}
}

// AsCustodyError извлекает типизированный отказ из цепочки ошибок
func AsCustodyError(err error) (*CustodyError, bool) {
	var ce *CustodyError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// translateIdentifierError переводит нарушение уникального индекса в отказ
// identifier_collision. Уникальность обеспечивается на уровне БД, поэтому
// два конкурентных создания с одним номером не могут пройти оба
func translateIdentifierError(err error, identifier string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewIdentifierCollisionError(fmt.Sprintf("Номер %s уже существует", identifier))
	}
	return err
}
