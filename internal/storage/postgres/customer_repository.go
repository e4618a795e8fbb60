package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) Create(customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (
			id, name, tax_id, email, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		customer.ID, customer.Name, customer.TaxID, customer.Email,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateFieldError(err, customer); dup != nil {
			return dup
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// duplicateFieldError определяет по имени констрейнта, какое именно поле
// нарушило уникальность.
func duplicateFieldError(err error, customer domain.Customer) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "tax_id"):
		return &domain.DuplicateKeyError{Field: "tax_id", Value: customer.TaxID}
	case strings.Contains(pgErr.ConstraintName, "email"):
		return &domain.DuplicateKeyError{Field: "email", Value: customer.Email}
	default:
		return &domain.DuplicateKeyError{Field: "customer_id", Value: customer.ID}
	}
}

func (r *customerRepository) Get(id string) (domain.Customer, error) {
	return r.getBy("id", id)
}

func (r *customerRepository) GetByTaxID(taxID string) (domain.Customer, error) {
	return r.getBy("tax_id", taxID)
}

func (r *customerRepository) GetByEmail(email string) (domain.Customer, error) {
	return r.getBy("email", email)
}

// getBy выполняет выборку по одной из колонок с уникальным индексом.
func (r *customerRepository) getBy(column, value string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT id, name, tax_id, email, created_at, updated_at
		FROM customers
		WHERE %s = $1
	`, column), value).Scan(
		&customer.ID, &customer.Name, &customer.TaxID, &customer.Email,
		&customer.CreatedAt, &customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.NewNotFound("customer", value)
		}
		return domain.Customer{}, fmt.Errorf("select customer by %s: %w", column, err)
	}
	return customer, nil
}

func (r *customerRepository) List(limit int) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, name, tax_id, email, created_at, updated_at
		FROM customers
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
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var customer domain.Customer
		if err := rows.Scan(
			&customer.ID, &customer.Name, &customer.TaxID, &customer.Email,
			&customer.CreatedAt, &customer.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		result = append(result, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return result, nil
}

func (r *customerRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.NewNotFound("customer", id)
	}
	return nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
