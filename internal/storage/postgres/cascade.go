package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

type orderCascade struct {
	db *sql.DB
}

// NewOrderCascade создаёт каскадное удаление заказа поверх PostgreSQL.
func NewOrderCascade(store *Store) domain.OrderCascadeDeleter {
	return &orderCascade{db: store.DB()}
}

// DeleteOrderCascade удаляет платежи, историю, позиции и заказ в одной
// транзакции: сбой на любом шаге откатывает все удаления разом.
func (c *orderCascade) DeleteOrderCascade(orderID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete payments: %w", err)
	}
	deletedPayments, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM order_timeline WHERE order_id = $1`, orderID); err != nil {
		return 0, fmt.Errorf("delete timeline: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return 0, fmt.Errorf("delete order items: %w", err)
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = domain.NewNotFound("order", orderID)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete order cascade: %w", err)
	}
	return int(deletedPayments), nil
}

var _ domain.OrderCascadeDeleter = (*orderCascade)(nil)
