package registry

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// EmployeeRegistry — справочник сотрудников с уникальностью tax_id.
type EmployeeRegistry struct {
	employees domain.EmployeeRepository
	logger    *log.Entry
}

// NewEmployeeRegistry создаёт справочник сотрудников.
func NewEmployeeRegistry(employees domain.EmployeeRepository, logger *log.Entry) *EmployeeRegistry {
	if logger == nil {
		logger = log.WithField("component", "employee-registry")
	}
	return &EmployeeRegistry{
		employees: employees,
		logger:    logger,
	}
}

// Create регистрирует сотрудника, проверяя уникальность tax_id.
func (r *EmployeeRegistry) Create(employee domain.Employee) (domain.Employee, error) {
	if employee.TaxID == "" {
		return domain.Employee{}, domain.ErrTaxIDRequired
	}
	if _, err := r.employees.GetByTaxID(employee.TaxID); err == nil {
		return domain.Employee{}, &domain.DuplicateKeyError{Field: "tax_id", Value: employee.TaxID}
	} else if !domain.IsNotFound(err) {
		return domain.Employee{}, err
	}

	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	if errs := employee.Validate(); len(errs) > 0 {
		return domain.Employee{}, domain.NewInvalidOperation("invalid employee: %v", errs[0])
	}
	if err := r.employees.Create(employee); err != nil {
		return domain.Employee{}, err
	}

	r.logger.WithFields(log.Fields{
		"employee_id": employee.ID,
		"role":        employee.Role,
	}).Info("employee registered")
	return employee, nil
}

// Get возвращает сотрудника по идентификатору.
func (r *EmployeeRegistry) Get(id string) (domain.Employee, error) {
	return r.employees.Get(id)
}

// List возвращает сотрудников с опциональным ограничением на количество.
func (r *EmployeeRegistry) List(limit int) ([]domain.Employee, error) {
	return r.employees.List(limit)
}

// Delete удаляет сотрудника.
func (r *EmployeeRegistry) Delete(id string) error {
	return r.employees.Delete(id)
}
