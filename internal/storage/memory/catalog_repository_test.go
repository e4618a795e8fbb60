package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/storage/memory"
)

func newRing(id string, stock int32) domain.Jewelry {
	return domain.Jewelry{
		ID:         id,
		Name:       "Gold ring",
		Kind:       domain.JewelryKindRing,
		Material:   "gold",
		PriceMinor: 150000,
		Stock:      stock,
		Ring:       &domain.RingDetails{Size: 16.5},
	}
}

func TestCatalogRepository_CreateGet(t *testing.T) {
	repo := memory.NewCatalogRepository()
	ring := newRing("jewelry-1", 3)

	if err := repo.Create(ring); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ring); !domain.IsDuplicateKey(err) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	stored, err := repo.Get(ring.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 3 || stored.Kind != domain.JewelryKindRing {
		t.Fatalf("stored jewelry mismatch: %+v", stored)
	}

	if _, err := repo.Get("missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogRepository_AdjustStock(t *testing.T) {
	repo := memory.NewCatalogRepository()
	if err := repo.Create(newRing("jewelry-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.AdjustStock("jewelry-1", -3); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	err := repo.AdjustStock("jewelry-1", -4)
	var oos *domain.OutOfStockError
	if !errors.As(err, &oos) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if oos.Available != 2 || oos.Requested != 4 {
		t.Fatalf("unexpected availability report: %+v", oos)
	}

	// Неуспешное списание не должно менять остаток.
	stored, err := repo.Get("jewelry-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", stored.Stock)
	}

	if err := repo.AdjustStock("jewelry-1", 10); err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	stored, _ = repo.Get("jewelry-1")
	if stored.Stock != 12 {
		t.Fatalf("expected stock 12, got %d", stored.Stock)
	}
}

// Десять конкурентных списаний по одной единице против остатка 5:
// ровно пять должны пройти, остаток должен стать нулём.
func TestCatalogRepository_AdjustStockConcurrent(t *testing.T) {
	repo := memory.NewCatalogRepository()
	if err := repo.Create(newRing("jewelry-1", 5)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.AdjustStock("jewelry-1", -1)
		}()
	}
	wg.Wait()
	close(results)

	succeeded, failed := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case domain.IsOutOfStock(err):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 5 || failed != 5 {
		t.Fatalf("expected 5/5 split, got %d succeeded, %d failed", succeeded, failed)
	}

	stored, err := repo.Get("jewelry-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", stored.Stock)
	}
}

func TestCatalogRepository_UpdatePriceAndDelete(t *testing.T) {
	repo := memory.NewCatalogRepository()
	if err := repo.Create(newRing("jewelry-1", 1)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := repo.UpdatePrice("jewelry-1", 200000); err != nil {
		t.Fatalf("update price failed: %v", err)
	}
	stored, _ := repo.Get("jewelry-1")
	if stored.PriceMinor != 200000 {
		t.Fatalf("expected price 200000, got %d", stored.PriceMinor)
	}

	if err := repo.Delete("jewelry-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.Delete("jewelry-1"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
