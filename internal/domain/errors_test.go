package domain_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

func TestErrorPredicates(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name:  "not found",
			err:   domain.NewNotFound("order", "order-1"),
			check: domain.IsNotFound,
		},
		{
			name:  "duplicate key",
			err:   &domain.DuplicateKeyError{Field: "tax_id", Value: "123"},
			check: domain.IsDuplicateKey,
		},
		{
			name:  "out of stock",
			err:   &domain.OutOfStockError{JewelryID: "jewelry-1", Available: 1, Requested: 3},
			check: domain.IsOutOfStock,
		},
		{
			name:  "invalid transition",
			err:   &domain.InvalidStatusTransitionError{From: domain.OrderStatusDelivered, To: domain.OrderStatusPending},
			check: domain.IsInvalidTransition,
		},
		{
			name:  "invalid operation",
			err:   domain.NewInvalidOperation("cannot delete customer with orders"),
			check: domain.IsInvalidOperation,
		},
		{
			name:  "version conflict",
			err:   domain.ErrVersionConflict,
			check: domain.IsVersionConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Fatalf("predicate did not match %v", tc.err)
			}
			// Обёртка через %w не должна ломать распознавание.
			if !tc.check(fmt.Errorf("storage: %w", tc.err)) {
				t.Fatalf("predicate did not match wrapped %v", tc.err)
			}
		})
	}
}

func TestErrorPredicatesDoNotCross(t *testing.T) {
	err := domain.NewNotFound("jewelry", "jewelry-1")
	if domain.IsDuplicateKey(err) || domain.IsOutOfStock(err) || domain.IsInvalidOperation(err) {
		t.Fatalf("not found error matched a foreign predicate")
	}
}

func TestOutOfStockErrorMessage(t *testing.T) {
	err := &domain.OutOfStockError{JewelryID: "jewelry-1", Available: 2, Requested: 5}
	msg := err.Error()
	for _, part := range []string{"jewelry-1", "2", "5"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("expected %q in message %q", part, msg)
		}
	}
}
