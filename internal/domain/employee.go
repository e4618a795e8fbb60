package domain

import "time"

// EmployeeRole — роль сотрудника. Как и для украшений, иерархия типов
// представлена тегированным вариантом с payload конкретной роли.
type EmployeeRole string

const (
	// EmployeeRoleManager — управляющий магазином.
	EmployeeRoleManager EmployeeRole = "manager"
	// EmployeeRoleSalesperson — продавец-консультант.
	EmployeeRoleSalesperson EmployeeRole = "salesperson"
)

// Valid проверяет, что роль относится к поддерживаемым значениям.
func (r EmployeeRole) Valid() bool {
	switch r {
	case EmployeeRoleManager, EmployeeRoleSalesperson:
		return true
	default:
		return false
	}
}

// ManagerDetails — payload для управляющих.
type ManagerDetails struct {
	Department string `json:"department"`
}

// SalespersonDetails — payload для продавцов.
type SalespersonDetails struct {
	// CommissionPct — комиссия с продаж в процентах.
	CommissionPct int32 `json:"commission_pct"`
}

// Employee описывает сотрудника магазина. TaxID уникален.
type Employee struct {
	ID    string
	Name  string
	TaxID string
	Role  EmployeeRole

	Manager     *ManagerDetails
	Salesperson *SalespersonDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет корректность полей сотрудника и возвращает ошибки, если они есть.
func (e *Employee) Validate() []error {
	var errs []error

	if e.TaxID == "" {
		errs = append(errs, ErrTaxIDRequired)
	}
	if !e.Role.Valid() {
		errs = append(errs, ErrEmployeeRoleInvalid)
	}

	return errs
}
