package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// customerRepositoryInMemory — in-memory справочник клиентов с индексами
// уникальности по tax_id и email.
type customerRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]domain.Customer
	byTaxID map[string]string
	byEmail map[string]string
}

// NewCustomerRepository возвращает in-memory справочник клиентов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items:   make(map[string]domain.Customer),
		byTaxID: make(map[string]string),
		byEmail: make(map[string]string),
	}
}

// Create сохраняет клиента; уникальность tax_id и email проверяется под блокировкой.
func (r *customerRepositoryInMemory) Create(customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[customer.ID]; exists {
		return &domain.DuplicateKeyError{Field: "customer_id", Value: customer.ID}
	}
	if _, exists := r.byTaxID[customer.TaxID]; exists {
		return &domain.DuplicateKeyError{Field: "tax_id", Value: customer.TaxID}
	}
	if _, exists := r.byEmail[customer.Email]; exists {
		return &domain.DuplicateKeyError{Field: "email", Value: customer.Email}
	}

	r.items[customer.ID] = customer
	r.byTaxID[customer.TaxID] = customer.ID
	r.byEmail[customer.Email] = customer.ID
	return nil
}

// Get возвращает клиента или NotFoundError, если его нет.
func (r *customerRepositoryInMemory) Get(id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.NewNotFound("customer", id)
	}
	return customer, nil
}

// GetByTaxID возвращает клиента по налоговому номеру.
func (r *customerRepositoryInMemory) GetByTaxID(taxID string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTaxID[taxID]
	if !ok {
		return domain.Customer{}, domain.NewNotFound("customer", taxID)
	}
	return r.items[id], nil
}

// GetByEmail возвращает клиента по email.
func (r *customerRepositoryInMemory) GetByEmail(email string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return domain.Customer{}, domain.NewNotFound("customer", email)
	}
	return r.items[id], nil
}

// List возвращает клиентов, ограничивая выборку limit (если > 0).
func (r *customerRepositoryInMemory) List(limit int) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		result = append(result, customer)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Delete удаляет клиента вместе с индексами уникальности.
func (r *customerRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.NewNotFound("customer", id)
	}
	delete(r.items, id)
	delete(r.byTaxID, customer.TaxID)
	delete(r.byEmail, customer.Email)
	return nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
