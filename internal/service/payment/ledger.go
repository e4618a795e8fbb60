package payment

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// Ledger регистрирует платежи по заказам и считает оплаченную сумму.
type Ledger struct {
	orders   domain.OrderRepository
	payments domain.PaymentRepository
	logger   *log.Entry
}

// NewLedger создаёт Ledger поверх хранилищ заказов и платежей.
func NewLedger(orders domain.OrderRepository, payments domain.PaymentRepository, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.WithField("component", "payment-ledger")
	}
	return &Ledger{
		orders:   orders,
		payments: payments,
		logger:   logger,
	}
}

// Record регистрирует платёж по заказу и возвращает платёж вместе с
// оплаченной суммой после его учёта. Платежей по заказу может быть
// несколько; суммарная оплата не ограничивается суммой заказа — сравнение
// paid-to-date с totalAmount остаётся на вызывающей стороне.
func (l *Ledger) Record(orderID string, amountMinor int64, method domain.PaymentMethod) (domain.Payment, int64, error) {
	order, err := l.orders.Get(orderID)
	if err != nil {
		return domain.Payment{}, 0, err
	}
	if order.Status == domain.OrderStatusCanceled {
		return domain.Payment{}, 0, domain.NewInvalidOperation("cannot record payment for canceled order %s", orderID)
	}
	if amountMinor <= 0 {
		return domain.Payment{}, 0, domain.NewInvalidOperation("payment amount must be greater than zero, got %d", amountMinor)
	}
	if !method.Valid() {
		return domain.Payment{}, 0, domain.NewInvalidOperation("unsupported payment method %q", method)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Method:      method,
		AmountMinor: amountMinor,
		PaidAt:      now,
		CreatedAt:   now,
	}
	if err := l.payments.Append(payment); err != nil {
		return domain.Payment{}, 0, err
	}

	paid, err := l.payments.SumByOrder(orderID)
	if err != nil {
		return domain.Payment{}, 0, err
	}

	l.logger.WithFields(log.Fields{
		"order_id":     orderID,
		"payment_id":   payment.ID,
		"amount_minor": amountMinor,
		"method":       method,
		"paid_to_date": paid,
	}).Info("payment recorded")

	return payment, paid, nil
}

// PaidToDate возвращает сумму зарегистрированных платежей по заказу.
func (l *Ledger) PaidToDate(orderID string) (int64, error) {
	if _, err := l.orders.Get(orderID); err != nil {
		return 0, err
	}
	return l.payments.SumByOrder(orderID)
}

// ListByOrder возвращает платежи заказа в порядке создания.
func (l *Ledger) ListByOrder(orderID string) ([]domain.Payment, error) {
	if _, err := l.orders.Get(orderID); err != nil {
		return nil, err
	}
	return l.payments.ListByOrder(orderID)
}
