package memory

import (
	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// orderCascadeInMemory удаляет заказ с платежами и историей, удерживая
// блокировки всех трёх хранилищ: никакой другой вызов не увидит заказ
// без платежей или платежи без заказа.
type orderCascadeInMemory struct {
	orders   *orderRepositoryInMemory
	payments *paymentRepositoryInMemory
	timeline *timelineRepositoryInMemory
}

// NewOrderCascade собирает каскадное удаление поверх in-memory хранилищ.
// Принимает только репозитории, созданные конструкторами этого пакета.
func NewOrderCascade(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
) domain.OrderCascadeDeleter {
	o, okOrders := orders.(*orderRepositoryInMemory)
	p, okPayments := payments.(*paymentRepositoryInMemory)
	t, okTimeline := timeline.(*timelineRepositoryInMemory)
	if !okOrders || !okPayments || !okTimeline {
		panic("memory: NewOrderCascade requires repositories created by this package")
	}
	return &orderCascadeInMemory{orders: o, payments: p, timeline: t}
}

// DeleteOrderCascade удаляет платежи, историю и заказ с позициями как одну
// единицу работы. Блокировки берутся в фиксированном порядке: заказы,
// платежи, история.
func (c *orderCascadeInMemory) DeleteOrderCascade(orderID string) (int, error) {
	c.orders.mu.Lock()
	defer c.orders.mu.Unlock()
	c.payments.mu.Lock()
	defer c.payments.mu.Unlock()
	c.timeline.mu.Lock()
	defer c.timeline.mu.Unlock()

	if _, ok := c.orders.items[orderID]; !ok {
		return 0, domain.NewNotFound("order", orderID)
	}

	deleted := 0
	for id, payment := range c.payments.items {
		if payment.OrderID == orderID {
			delete(c.payments.items, id)
			deleted++
		}
	}
	delete(c.timeline.events, orderID)
	delete(c.orders.items, orderID)
	return deleted, nil
}

var _ domain.OrderCascadeDeleter = (*orderCascadeInMemory)(nil)
