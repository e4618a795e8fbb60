package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository создаёт PostgreSQL-реализацию EmployeeRepository.
func NewEmployeeRepository(store *Store) domain.EmployeeRepository {
	return &employeeRepository{db: store.DB()}
}

// employeeDetails сериализует payload роли в JSONB-колонку.
type employeeDetails struct {
	Manager     *domain.ManagerDetails     `json:"manager,omitempty"`
	Salesperson *domain.SalespersonDetails `json:"salesperson,omitempty"`
}

func (r *employeeRepository) Create(employee domain.Employee) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	details, err := json.Marshal(employeeDetails{
		Manager:     employee.Manager,
		Salesperson: employee.Salesperson,
	})
	if err != nil {
		return fmt.Errorf("marshal employee details: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO employees (
			id, name, tax_id, role, details, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		employee.ID, employee.Name, employee.TaxID, string(employee.Role),
		details, employee.CreatedAt, employee.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateKeyError{Field: "tax_id", Value: employee.TaxID}
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

func (r *employeeRepository) Get(id string) (domain.Employee, error) {
	return r.getBy("id", id)
}

func (r *employeeRepository) GetByTaxID(taxID string) (domain.Employee, error) {
	return r.getBy("tax_id", taxID)
}

func (r *employeeRepository) getBy(column, value string) (domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		employee domain.Employee
		role     string
		details  []byte
	)
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, name, tax_id, role, details, created_at, updated_at
		FROM employees
		WHERE %s = $1
	`, column), value).Scan(
		&employee.ID, &employee.Name, &employee.TaxID, &role,
		&details, &employee.CreatedAt, &employee.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Employee{}, domain.NewNotFound("employee", value)
		}
		return domain.Employee{}, fmt.Errorf("select employee by %s: %w", column, err)
	}
	employee.Role = domain.EmployeeRole(role)
	if err := unmarshalEmployeeDetails(details, &employee); err != nil {
		return domain.Employee{}, err
	}
	return employee, nil
}

func unmarshalEmployeeDetails(raw []byte, employee *domain.Employee) error {
	if len(raw) == 0 {
		return nil
	}
	var details employeeDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return fmt.Errorf("unmarshal employee details: %w", err)
	}
	employee.Manager = details.Manager
	employee.Salesperson = details.Salesperson
	return nil
}

func (r *employeeRepository) List(limit int) ([]domain.Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, name, tax_id, role, details, created_at, updated_at
		FROM employees
		ORDER BY id
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $1", limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("select employees: %w", err)
	}
	defer rows.Close()

	var result []domain.Employee
	for rows.Next() {
		var (
			employee domain.Employee
			role     string
			details  []byte
		)
		if err := rows.Scan(
			&employee.ID, &employee.Name, &employee.TaxID, &role,
			&details, &employee.CreatedAt, &employee.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		employee.Role = domain.EmployeeRole(role)
		if err := unmarshalEmployeeDetails(details, &employee); err != nil {
			return nil, err
		}
		result = append(result, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return result, nil
}

func (r *employeeRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFound("employee", id)
	}
	return nil
}

var _ domain.EmployeeRepository = (*employeeRepository)(nil)
