package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/jms/internal/metrics"
	"github.com/vladislavdragonenkov/jms/internal/service/inventory"
	"github.com/vladislavdragonenkov/jms/internal/service/payment"
)

// ItemRequest описывает запрошенную позицию: украшение и количество.
type ItemRequest struct {
	JewelryID string
	Qty       int32
}

// Manager управляет жизненным циклом заказа: создание, добавление позиций,
// переходы статусов, платежи и каскадное удаление. Владеет таблицей
// переходов и инвариантом totalAmount == Σ subtotal; остатками распоряжается
// через Ledger склада, платежами — через Ledger платежей.
type Manager struct {
	orders    domain.OrderRepository
	catalog   domain.CatalogRepository
	customers domain.CustomerRepository
	payments  domain.PaymentRepository
	timeline  domain.TimelineRepository
	outbox    domain.OutboxRepository
	cascade   domain.OrderCascadeDeleter
	stock     *inventory.Ledger
	ledger    *payment.Ledger
	logger    *log.Entry
	metrics   *metrics.OrderMetrics
}

// NewManager создаёт рабочий экземпляр менеджера заказов.
func NewManager(
	orders domain.OrderRepository,
	catalog domain.CatalogRepository,
	customers domain.CustomerRepository,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	cascade domain.OrderCascadeDeleter,
	logger *log.Entry,
) *Manager {
	if logger == nil {
		logger = log.New().WithField("component", "order-manager")
	}
	return &Manager{
		orders:    orders,
		catalog:   catalog,
		customers: customers,
		payments:  payments,
		timeline:  timeline,
		outbox:    outbox,
		cascade:   cascade,
		stock:     inventory.NewLedger(catalog, logger),
		ledger:    payment.NewLedger(orders, payments, logger),
		logger:    logger,
		metrics:   metrics.NewOrderMetrics(),
	}
}

// NewManagerWithoutMetrics создаёт менеджер без метрик (для тестов).
func NewManagerWithoutMetrics(
	orders domain.OrderRepository,
	catalog domain.CatalogRepository,
	customers domain.CustomerRepository,
	payments domain.PaymentRepository,
	timeline domain.TimelineRepository,
	outbox domain.OutboxRepository,
	cascade domain.OrderCascadeDeleter,
	logger *log.Entry,
) *Manager {
	m := NewManager(orders, catalog, customers, payments, timeline, outbox, cascade, logger)
	m.metrics = nil
	return m
}

// CreateOrder создаёт заказ в статусе pending. Доступность проверяется по
// всем позициям до какой-либо записи; остатки при создании не списываются —
// физическое списание выполняется только при выдаче. Цена каждой позиции
// фиксируется на момент создания.
func (m *Manager) CreateOrder(customerID string, items []ItemRequest) (domain.Order, error) {
	start := time.Now()
	defer m.observe("create_order", start)

	if customerID == "" {
		return domain.Order{}, domain.ErrCustomerRequired
	}
	if len(items) == 0 {
		return domain.Order{}, domain.NewInvalidOperation("order must contain at least one item")
	}
	for _, item := range items {
		if item.Qty <= 0 {
			return domain.Order{}, domain.NewInvalidOperation("item qty must be greater than zero, got %d", item.Qty)
		}
	}

	if _, err := m.customers.Get(customerID); err != nil {
		return domain.Order{}, err
	}

	merged := mergeItems(items)
	requests := make([]inventory.Request, 0, len(merged))
	for _, item := range merged {
		requests = append(requests, inventory.Request{JewelryID: item.JewelryID, Qty: item.Qty})
	}
	if err := m.stock.CheckAvailability(requests); err != nil {
		m.recordOutOfStock(err)
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     domain.OrderStatusPending,
		Version:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range merged {
		jewelry, err := m.catalog.Get(item.JewelryID)
		if err != nil {
			return domain.Order{}, err
		}
		order.Items = append(order.Items, domain.OrderItem{
			ID:         uuid.NewString(),
			JewelryID:  jewelry.ID,
			Qty:        item.Qty,
			PriceMinor: jewelry.PriceMinor,
			CreatedAt:  now,
		})
	}
	order.RecomputeTotal()

	if err := m.orders.Create(order); err != nil {
		return domain.Order{}, err
	}

	m.appendTimeline(order.ID, domain.TimelineOrderCreated, "")
	m.enqueueEvent(kafka.EventTypeOrderCreated, order, map[string]interface{}{
		"items_count": len(order.Items),
		"total_minor": order.TotalMinor,
	})
	if m.metrics != nil {
		m.metrics.RecordOrderCreated()
	}
	m.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"total_minor": order.TotalMinor,
	}).Info("order created")

	return order, nil
}

// AddItem добавляет позицию в нетерминальный заказ, фиксируя свежую цену
// из каталога, и пересчитывает сумму заказа.
func (m *Manager) AddItem(orderID, jewelryID string, qty int32) (domain.Order, error) {
	start := time.Now()
	defer m.observe("add_item", start)

	if qty <= 0 {
		return domain.Order{}, domain.NewInvalidOperation("item qty must be greater than zero, got %d", qty)
	}

	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status.Terminal() {
		return domain.Order{}, domain.NewInvalidOperation("cannot add item to %s order %s", order.Status, orderID)
	}

	jewelry, err := m.catalog.Get(jewelryID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := m.stock.CheckAvailability([]inventory.Request{{JewelryID: jewelryID, Qty: qty}}); err != nil {
		m.recordOutOfStock(err)
		return domain.Order{}, err
	}

	now := time.Now().UTC()
	order.Items = append(order.Items, domain.OrderItem{
		ID:         uuid.NewString(),
		JewelryID:  jewelry.ID,
		Qty:        qty,
		PriceMinor: jewelry.PriceMinor,
		CreatedAt:  now,
	})
	order.RecomputeTotal()
	order.UpdatedAt = now

	if err := m.orders.Save(order); err != nil {
		return domain.Order{}, err
	}
	order.Version++

	m.appendTimeline(order.ID, domain.TimelineOrderItemAdded, jewelryID)
	m.enqueueEvent(kafka.EventTypeItemAdded, order, map[string]interface{}{
		"jewelry_id":  jewelryID,
		"qty":         qty,
		"total_minor": order.TotalMinor,
	})
	if m.metrics != nil {
		m.metrics.RecordItemAdded()
	}

	return order, nil
}

// Transition переводит заказ в новый статус по таблице переходов.
// Переход в delivered списывает остатки по всем позициям как одну единицу
// работы; при конфликте версий списание компенсируется и возвращается
// ErrVersionConflict, поэтому два конкурентных delivered-вызова не могут
// списать остаток дважды.
func (m *Manager) Transition(orderID string, newStatus domain.OrderStatus) (domain.Order, error) {
	start := time.Now()
	defer m.observe("transition", start)

	order, err := m.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return domain.Order{}, &domain.InvalidStatusTransitionError{From: order.Status, To: newStatus}
	}

	var consumed []inventory.Request
	if newStatus == domain.OrderStatusDelivered {
		requests := make([]inventory.Request, 0, len(order.Items))
		for _, item := range order.Items {
			requests = append(requests, inventory.Request{JewelryID: item.JewelryID, Qty: item.Qty})
		}
		if err := m.stock.ConsumeAll(requests); err != nil {
			m.recordOutOfStock(err)
			return domain.Order{}, err
		}
		consumed = requests
	}

	previous := order.Status
	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()
	if err := m.orders.Save(order); err != nil {
		// Конкурентный переход успел раньше: возвращаем списанное и отдаём конфликт.
		for _, req := range consumed {
			if restoreErr := m.stock.Restore(req.JewelryID, req.Qty); restoreErr != nil {
				m.logger.WithError(restoreErr).WithFields(log.Fields{
					"order_id":   orderID,
					"jewelry_id": req.JewelryID,
				}).Error("failed to restore stock after version conflict")
			}
		}
		return domain.Order{}, err
	}
	order.Version++

	m.appendTimeline(order.ID, domain.TimelineStatusChanged, string(previous)+" -> "+string(newStatus))
	m.enqueueEvent(eventTypeForStatus(newStatus), order, map[string]interface{}{
		"from": string(previous),
	})
	if m.metrics != nil {
		m.metrics.RecordStatusChange(string(newStatus), newStatus.Terminal())
	}
	m.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"from":     previous,
		"to":       newStatus,
	}).Info("order status changed")

	return order, nil
}

// DeleteOrder удаляет заказ в любом статусе вместе с платежами, историей и
// позициями. Каскад выполняется хранилищем как одна единица работы: при
// сбое не фиксируется ни одно из удалений, заказ остаётся видимым целиком
// и может быть удалён повторно.
func (m *Manager) DeleteOrder(orderID string) error {
	start := time.Now()
	defer m.observe("delete_order", start)

	order, err := m.orders.Get(orderID)
	if err != nil {
		return err
	}

	deletedPayments, err := m.cascade.DeleteOrderCascade(orderID)
	if err != nil {
		return err
	}

	m.enqueueEvent(kafka.EventTypeOrderDeleted, order, map[string]interface{}{
		"deleted_payments": deletedPayments,
	})
	if m.metrics != nil {
		m.metrics.RecordOrderDeleted(!order.Status.Terminal())
	}
	m.logger.WithFields(log.Fields{
		"order_id":         orderID,
		"deleted_payments": deletedPayments,
	}).Info("order deleted with items and payments")

	return nil
}

// RecordPayment регистрирует платёж по заказу через Ledger платежей
// и возвращает платёж вместе с оплаченной суммой.
func (m *Manager) RecordPayment(orderID string, amountMinor int64, method domain.PaymentMethod) (domain.Payment, int64, error) {
	start := time.Now()
	defer m.observe("record_payment", start)

	pmt, paid, err := m.ledger.Record(orderID, amountMinor, method)
	if err != nil {
		return domain.Payment{}, 0, err
	}

	m.appendTimeline(orderID, domain.TimelinePaymentRecorded, string(method))
	if order, getErr := m.orders.Get(orderID); getErr == nil {
		m.enqueueEvent(kafka.EventTypePaymentRecorded, order, map[string]interface{}{
			"payment_id":   pmt.ID,
			"amount_minor": pmt.AmountMinor,
			"method":       string(method),
			"paid_to_date": paid,
		})
	}
	if m.metrics != nil {
		m.metrics.RecordPayment()
	}

	return pmt, paid, nil
}

// GetOrder возвращает снимок заказа.
func (m *Manager) GetOrder(orderID string) (domain.Order, error) {
	return m.orders.Get(orderID)
}

// ListOrders возвращает заказы клиента.
func (m *Manager) ListOrders(customerID string, limit int) ([]domain.Order, error) {
	return m.orders.ListByCustomer(customerID, limit)
}

// Payments возвращает Ledger платежей для read-запросов транспорта.
func (m *Manager) Payments() *payment.Ledger {
	return m.ledger
}

// Timeline возвращает историю событий заказа.
func (m *Manager) Timeline(orderID string) ([]domain.TimelineEvent, error) {
	if _, err := m.orders.Get(orderID); err != nil {
		return nil, err
	}
	return m.timeline.List(orderID)
}

// mergeItems сливает дубликаты украшений, сохраняя порядок первого появления.
func mergeItems(items []ItemRequest) []ItemRequest {
	qtyByID := make(map[string]int32, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, seen := qtyByID[item.JewelryID]; !seen {
			order = append(order, item.JewelryID)
		}
		qtyByID[item.JewelryID] += item.Qty
	}

	merged := make([]ItemRequest, 0, len(order))
	for _, id := range order {
		merged = append(merged, ItemRequest{JewelryID: id, Qty: qtyByID[id]})
	}
	return merged
}

func eventTypeForStatus(status domain.OrderStatus) kafka.EventType {
	switch status {
	case domain.OrderStatusAccepted:
		return kafka.EventTypeOrderAccepted
	case domain.OrderStatusDelivered:
		return kafka.EventTypeOrderDelivered
	case domain.OrderStatusCanceled:
		return kafka.EventTypeOrderCanceled
	default:
		return kafka.EventTypeOrderCreated
	}
}

func (m *Manager) observe(operation string, start time.Time) {
	if m.metrics != nil {
		m.metrics.RecordOperationDuration(operation, time.Since(start))
	}
}

func (m *Manager) recordOutOfStock(err error) {
	if m.metrics != nil && domain.IsOutOfStock(err) {
		m.metrics.RecordOutOfStock()
	}
}

func (m *Manager) appendTimeline(orderID, eventType, reason string) {
	if m.timeline == nil {
		return
	}
	err := m.timeline.Append(domain.TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	})
	if err != nil {
		m.logger.WithError(err).WithField("order_id", orderID).Warn("failed to append timeline event")
	}
}

func (m *Manager) enqueueEvent(eventType kafka.EventType, order domain.Order, metadata map[string]interface{}) {
	if m.outbox == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), metadata)
	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to marshal order event")
		return
	}
	if _, err := m.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   order.ID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		m.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to enqueue outbox event")
	}
}
