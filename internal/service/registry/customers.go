package registry

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// CustomerRegistry — справочник клиентов с guard-проверками уникальности
// и ссылочной целостности при удалении.
type CustomerRegistry struct {
	customers domain.CustomerRepository
	orders    domain.OrderRepository
	logger    *log.Entry
}

// NewCustomerRegistry создаёт справочник клиентов.
func NewCustomerRegistry(customers domain.CustomerRepository, orders domain.OrderRepository, logger *log.Entry) *CustomerRegistry {
	if logger == nil {
		logger = log.WithField("component", "customer-registry")
	}
	return &CustomerRegistry{
		customers: customers,
		orders:    orders,
		logger:    logger,
	}
}

// Create регистрирует клиента, проверяя уникальность tax_id и email.
// Хранилище повторяет проверку под своей блокировкой, поэтому гонка двух
// конкурентных созданий с одинаковым значением всё равно отлавливается.
func (r *CustomerRegistry) Create(name, taxID, email string) (domain.Customer, error) {
	if err := r.assertUniqueTaxID(taxID); err != nil {
		return domain.Customer{}, err
	}
	if err := r.assertUniqueEmail(email); err != nil {
		return domain.Customer{}, err
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		TaxID:     taxID,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errs := customer.Validate(); len(errs) > 0 {
		return domain.Customer{}, domain.NewInvalidOperation("invalid customer: %v", errs[0])
	}
	if err := r.customers.Create(customer); err != nil {
		return domain.Customer{}, err
	}

	r.logger.WithField("customer_id", customer.ID).Info("customer registered")
	return customer, nil
}

// Get возвращает клиента по идентификатору.
func (r *CustomerRegistry) Get(id string) (domain.Customer, error) {
	return r.customers.Get(id)
}

// List возвращает клиентов с опциональным ограничением на количество.
func (r *CustomerRegistry) List(limit int) ([]domain.Customer, error) {
	return r.customers.List(limit)
}

// Delete удаляет клиента, если на него не ссылается ни один заказ.
func (r *CustomerRegistry) Delete(id string) error {
	if _, err := r.customers.Get(id); err != nil {
		return err
	}

	count, err := r.orders.CountByCustomer(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.NewInvalidOperation("customer %s is referenced by %d order(s) and cannot be deleted", id, count)
	}

	return r.customers.Delete(id)
}

// assertUniqueTaxID возвращает DuplicateKeyError, если налоговый номер занят.
func (r *CustomerRegistry) assertUniqueTaxID(taxID string) error {
	if taxID == "" {
		return domain.ErrTaxIDRequired
	}
	_, err := r.customers.GetByTaxID(taxID)
	if err == nil {
		return &domain.DuplicateKeyError{Field: "tax_id", Value: taxID}
	}
	if !domain.IsNotFound(err) {
		return err
	}
	return nil
}

// assertUniqueEmail возвращает DuplicateKeyError, если email занят.
func (r *CustomerRegistry) assertUniqueEmail(email string) error {
	if email == "" {
		return domain.ErrEmailRequired
	}
	_, err := r.customers.GetByEmail(email)
	if err == nil {
		return &domain.DuplicateKeyError{Field: "email", Value: email}
	}
	if !domain.IsNotFound(err) {
		return err
	}
	return nil
}
