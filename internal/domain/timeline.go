package domain

import "time"

// Типы событий timeline заказа.
const (
	TimelineOrderCreated    = "OrderCreated"
	TimelineOrderItemAdded  = "OrderItemAdded"
	TimelineStatusChanged   = "OrderStatusChanged"
	TimelinePaymentRecorded = "PaymentRecorded"
)

// TimelineEvent описывает событие в жизненном цикле заказа:
// создание, добавление позиции, смену статуса, платёж.
// Reason несёт контекст события: причину отмены, метод платежа,
// добавленную позицию.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
