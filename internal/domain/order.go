package domain

import "time"

// OrderStatus описывает жизненный цикл заказа ювелирного магазина.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает подтверждения.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusAccepted — заказ подтверждён и готовится к выдаче.
	OrderStatusAccepted OrderStatus = "accepted"
	// OrderStatusDelivered — заказ выдан клиенту; остатки по позициям списаны. Терминальный статус.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCanceled — заказ отменён до выдачи. Терминальный статус.
	OrderStatusCanceled OrderStatus = "canceled"
)

// allowedTransitions задаёт таблицу переходов статусов.
// Терминальные статусы (delivered, canceled) отсутствуют в таблице как источники.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:  {OrderStatusAccepted, OrderStatusCanceled},
	OrderStatusAccepted: {OrderStatusDelivered, OrderStatusCanceled},
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusDelivered, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Terminal сообщает, является ли статус терминальным.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCanceled
}

// CanTransitionTo проверяет переход по таблице статусов.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// JewelryID — ссылка на украшение в каталоге.
	JewelryID string
	// Qty — количество единиц.
	Qty int32
	// PriceMinor — цена за единицу в минимальных денежных единицах,
	// зафиксированная в момент добавления позиции. Последующие изменения
	// цены в каталоге на неё не влияют.
	PriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// SubtotalMinor возвращает стоимость позиции: qty * зафиксированная цена.
func (i OrderItem) SubtotalMinor() int64 {
	return int64(i.Qty) * i.PriceMinor
}

// Order агрегирует состояние заказа и его позиции.
// Позиции принадлежат заказу; обратных ссылок на каталог заказ не держит.
type Order struct {
	ID         string
	CustomerID string
	Status     OrderStatus
	TotalMinor int64
	Items      []OrderItem
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecomputeTotal пересчитывает сумму заказа из позиций.
// TotalMinor — производное значение, источником истины являются позиции.
func (o *Order) RecomputeTotal() {
	var total int64
	for _, item := range o.Items {
		total += item.SubtotalMinor()
	}
	o.TotalMinor = total
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrOrderStatusInvalid)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}

	// Сверяем сумму заказа с суммой позиций: qty * зафиксированная цена.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor <= 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += item.SubtotalMinor()
	}
	if calc != o.TotalMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
