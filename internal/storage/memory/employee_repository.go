package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// employeeRepositoryInMemory — in-memory справочник сотрудников.
type employeeRepositoryInMemory struct {
	mu      sync.RWMutex
	items   map[string]domain.Employee
	byTaxID map[string]string
}

// NewEmployeeRepository возвращает in-memory справочник сотрудников.
func NewEmployeeRepository() domain.EmployeeRepository {
	return &employeeRepositoryInMemory{
		items:   make(map[string]domain.Employee),
		byTaxID: make(map[string]string),
	}
}

// Create сохраняет сотрудника; уникальность tax_id проверяется под блокировкой.
func (r *employeeRepositoryInMemory) Create(employee domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[employee.ID]; exists {
		return &domain.DuplicateKeyError{Field: "employee_id", Value: employee.ID}
	}
	if _, exists := r.byTaxID[employee.TaxID]; exists {
		return &domain.DuplicateKeyError{Field: "tax_id", Value: employee.TaxID}
	}

	r.items[employee.ID] = employee
	r.byTaxID[employee.TaxID] = employee.ID
	return nil
}

// Get возвращает сотрудника или NotFoundError, если его нет.
func (r *employeeRepositoryInMemory) Get(id string) (domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, ok := r.items[id]
	if !ok {
		return domain.Employee{}, domain.NewNotFound("employee", id)
	}
	return employee, nil
}

// GetByTaxID возвращает сотрудника по налоговому номеру.
func (r *employeeRepositoryInMemory) GetByTaxID(taxID string) (domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byTaxID[taxID]
	if !ok {
		return domain.Employee{}, domain.NewNotFound("employee", taxID)
	}
	return r.items[id], nil
}

// List возвращает сотрудников, ограничивая выборку limit (если > 0).
func (r *employeeRepositoryInMemory) List(limit int) ([]domain.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Employee, 0, len(r.items))
	for _, employee := range r.items {
		result = append(result, employee)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Delete удаляет сотрудника вместе с индексом уникальности.
func (r *employeeRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee, ok := r.items[id]
	if !ok {
		return domain.NewNotFound("employee", id)
	}
	delete(r.items, id)
	delete(r.byTaxID, employee.TaxID)
	return nil
}

var _ domain.EmployeeRepository = (*employeeRepositoryInMemory)(nil)
