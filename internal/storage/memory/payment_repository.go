package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// paymentRepositoryInMemory — простая in-memory реализация PaymentRepository.
type paymentRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Payment
}

// NewPaymentRepository возвращает in-memory хранилище платежей.
func NewPaymentRepository() domain.PaymentRepository {
	return &paymentRepositoryInMemory{
		items: make(map[string]domain.Payment),
	}
}

// Append сохраняет платёж, если ID ещё не занят.
func (r *paymentRepositoryInMemory) Append(payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[payment.ID]; exists {
		return &domain.DuplicateKeyError{Field: "payment_id", Value: payment.ID}
	}
	r.items[payment.ID] = payment
	return nil
}

// ListByOrder возвращает платежи заказа в порядке создания.
func (r *paymentRepositoryInMemory) ListByOrder(orderID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Payment, 0)
	for _, payment := range r.items {
		if payment.OrderID == orderID {
			result = append(result, payment)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// SumByOrder возвращает сумму платежей по заказу.
func (r *paymentRepositoryInMemory) SumByOrder(orderID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, payment := range r.items {
		if payment.OrderID == orderID {
			sum += payment.AmountMinor
		}
	}
	return sum, nil
}

// DeleteByOrder удаляет все платежи заказа и возвращает число удалённых.
func (r *paymentRepositoryInMemory) DeleteByOrder(orderID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, payment := range r.items {
		if payment.OrderID == orderID {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

var _ domain.PaymentRepository = (*paymentRepositoryInMemory)(nil)
