package registry_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/service/registry"
	"github.com/vladislavdragonenkov/jms/internal/storage/memory"
)

func newCatalogRegistry() (*registry.CatalogRegistry, domain.OrderRepository) {
	orders := memory.NewOrderRepository()
	return registry.NewCatalogRegistry(memory.NewCatalogRepository(), orders, nil), orders
}

func makeWatch() domain.Jewelry {
	return domain.Jewelry{
		Name:       "Steel watch",
		Kind:       domain.JewelryKindWatch,
		Material:   "steel",
		PriceMinor: 500000,
		Stock:      2,
		Watch:      &domain.WatchDetails{Mechanism: "mechanical"},
	}
}

func TestCatalogRegistryCreate(t *testing.T) {
	reg, _ := newCatalogRegistry()

	created, err := reg.Create(makeWatch())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated jewelry id")
	}

	invalid := makeWatch()
	invalid.PriceMinor = 0
	if _, err := reg.Create(invalid); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}

	mismatch := makeWatch()
	mismatch.Ring = &domain.RingDetails{Size: 16}
	if _, err := reg.Create(mismatch); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected details mismatch rejection, got %v", err)
	}
}

func TestCatalogRegistryUpdatePrice(t *testing.T) {
	reg, _ := newCatalogRegistry()
	created, err := reg.Create(makeWatch())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := reg.UpdatePrice(created.ID, 600000)
	if err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	if updated.PriceMinor != 600000 {
		t.Fatalf("expected price 600000, got %d", updated.PriceMinor)
	}

	if _, err := reg.UpdatePrice(created.ID, 0); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
	if _, err := reg.UpdatePrice("missing", 100); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogRegistryRestock(t *testing.T) {
	reg, _ := newCatalogRegistry()
	created, err := reg.Create(makeWatch())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := reg.Restock(created.ID, 3)
	if err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if updated.Stock != 5 {
		t.Fatalf("expected stock 5, got %d", updated.Stock)
	}

	if _, err := reg.Restock(created.ID, 0); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
	if _, err := reg.Restock(created.ID, -2); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}
}

func TestCatalogRegistryDeleteGuard(t *testing.T) {
	reg, orders := newCatalogRegistry()
	created, err := reg.Create(makeWatch())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	now := time.Now().UTC()
	err = orders.Create(domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Status:     domain.OrderStatusPending,
		TotalMinor: 500000,
		Items: []domain.OrderItem{
			{ID: "item-1", JewelryID: created.ID, Qty: 1, PriceMinor: 500000, CreatedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}

	// Украшение, на которое ссылаются позиции, не удаляется.
	if err := reg.Delete(created.ID); !domain.IsInvalidOperation(err) {
		t.Fatalf("expected invalid operation, got %v", err)
	}

	if err := orders.Delete("order-1"); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if err := reg.Delete(created.ID); err != nil {
		t.Fatalf("delete after order removed failed: %v", err)
	}
}
