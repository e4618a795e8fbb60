package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionConflict сигнализирует о конфликте версий при конкурентном сохранении заказа.
	ErrVersionConflict = errors.New("order version conflict")

	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если зафиксированная цена позиции не положительная.
	ErrItemPriceInvalid = errors.New("item price must be greater than zero")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order_id is required")
	// Ошибка отсутствующего идентификатора украшения.
	ErrJewelryIDRequired = errors.New("jewelry_id is required")
	// Ошибка недопустимого статуса заказа.
	ErrOrderStatusInvalid = errors.New("order status is invalid")
	// Ошибка отрицательного остатка на складе.
	ErrStockNegative = errors.New("jewelry stock must be non-negative")
	// Ошибка не положительной цены украшения.
	ErrPriceInvalid = errors.New("jewelry price must be greater than zero")
	// Ошибка недопустимого вида украшения.
	ErrJewelryKindInvalid = errors.New("jewelry kind is invalid")
	// Ошибка несоответствия деталей виду украшения.
	ErrJewelryDetailsMismatch = errors.New("jewelry details do not match kind")
	// Ошибка отсутствующего налогового номера.
	ErrTaxIDRequired = errors.New("tax_id is required")
	// Ошибка отсутствующего email.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка недопустимой роли сотрудника.
	ErrEmployeeRoleInvalid = errors.New("employee role is invalid")
	// Ошибка не положительной суммы платежа.
	ErrPaymentAmountInvalid = errors.New("payment amount must be greater than zero")
	// Ошибка недопустимого способа оплаты.
	ErrPaymentMethodInvalid = errors.New("payment method is invalid")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// NotFoundError возвращается, когда указанная сущность отсутствует в хранилище.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NewNotFound создаёт NotFoundError для сущности с идентификатором.
func NewNotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// DuplicateKeyError возвращается при нарушении уникальности поля.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Field, e.Value)
}

// OutOfStockError возвращается, когда запрошенное количество превышает остаток.
// Несёт идентификатор украшения и фактические available/requested.
type OutOfStockError struct {
	JewelryID string
	Available int32
	Requested int32
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("jewelry %q out of stock: available %d, requested %d",
		e.JewelryID, e.Available, e.Requested)
}

// InvalidStatusTransitionError возвращается при запрещённом переходе статуса заказа.
type InvalidStatusTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidStatusTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition %s -> %s", e.From, e.To)
}

// InvalidOperationError — нарушение бизнес-правила, не покрытое более узким типом:
// пустой список позиций, мутация терминального заказа, удаление сущности со ссылками.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

// NewInvalidOperation создаёт InvalidOperationError с форматированной причиной.
func NewInvalidOperation(format string, args ...any) error {
	return &InvalidOperationError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotFound проверяет, является ли ошибка NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsDuplicateKey проверяет, является ли ошибка нарушением уникальности.
func IsDuplicateKey(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// IsOutOfStock проверяет, является ли ошибка нехваткой остатка.
func IsOutOfStock(err error) bool {
	var target *OutOfStockError
	return errors.As(err, &target)
}

// IsInvalidTransition проверяет, является ли ошибка запрещённым переходом статуса.
func IsInvalidTransition(err error) bool {
	var target *InvalidStatusTransitionError
	return errors.As(err, &target)
}

// IsInvalidOperation проверяет, является ли ошибка нарушением бизнес-правила.
func IsInvalidOperation(err error) bool {
	var target *InvalidOperationError
	return errors.As(err, &target)
}

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
