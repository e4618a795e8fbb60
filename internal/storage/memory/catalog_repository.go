package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// catalogRepositoryInMemory — простая in-memory реализация CatalogRepository.
type catalogRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Jewelry
}

// NewCatalogRepository возвращает in-memory каталог для локальной разработки и тестов.
func NewCatalogRepository() domain.CatalogRepository {
	return &catalogRepositoryInMemory{
		items: make(map[string]domain.Jewelry),
	}
}

// Create сохраняет новое украшение, если ID ещё не занят.
func (r *catalogRepositoryInMemory) Create(jewelry domain.Jewelry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[jewelry.ID]; exists {
		return &domain.DuplicateKeyError{Field: "jewelry_id", Value: jewelry.ID}
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[jewelry.ID] = jewelry
	return nil
}

// Get возвращает украшение или NotFoundError, если его нет.
func (r *catalogRepositoryInMemory) Get(id string) (domain.Jewelry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jewelry, ok := r.items[id]
	if !ok {
		return domain.Jewelry{}, domain.NewNotFound("jewelry", id)
	}
	return jewelry, nil
}

// List возвращает каталог, ограничивая выборку limit (если > 0).
func (r *catalogRepositoryInMemory) List(limit int) ([]domain.Jewelry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Jewelry, 0, len(r.items))
	for _, jewelry := range r.items {
		result = append(result, jewelry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// UpdatePrice меняет текущую цену украшения.
func (r *catalogRepositoryInMemory) UpdatePrice(id string, priceMinor int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	jewelry, ok := r.items[id]
	if !ok {
		return domain.NewNotFound("jewelry", id)
	}
	jewelry.PriceMinor = priceMinor
	jewelry.UpdatedAt = time.Now().UTC()
	r.items[id] = jewelry
	return nil
}

// AdjustStock атомарно меняет остаток. Проверка и запись выполняются под
// одной блокировкой, поэтому два конкурентных списания не могут оба пройти
// по устаревшему остатку.
func (r *catalogRepositoryInMemory) AdjustStock(id string, delta int32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	jewelry, ok := r.items[id]
	if !ok {
		return domain.NewNotFound("jewelry", id)
	}
	if delta < 0 && jewelry.Stock+delta < 0 {
		return &domain.OutOfStockError{
			JewelryID: id,
			Available: jewelry.Stock,
			Requested: -delta,
		}
	}
	jewelry.Stock += delta
	jewelry.UpdatedAt = time.Now().UTC()
	r.items[id] = jewelry
	return nil
}

// Delete удаляет украшение из каталога.
func (r *catalogRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.NewNotFound("jewelry", id)
	}
	delete(r.items, id)
	return nil
}

// AdjustStockBatch применяет изменения под одной блокировкой: сперва
// проверяются все строки, затем применяются все изменения, поэтому
// частично применённый батч снаружи ненаблюдаем.
func (r *catalogRepositoryInMemory) AdjustStockBatch(changes []domain.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, change := range changes {
		jewelry, ok := r.items[change.JewelryID]
		if !ok {
			return domain.NewNotFound("jewelry", change.JewelryID)
		}
		if change.Delta < 0 && jewelry.Stock+change.Delta < 0 {
			return &domain.OutOfStockError{
				JewelryID: change.JewelryID,
				Available: jewelry.Stock,
				Requested: -change.Delta,
			}
		}
	}

	now := time.Now().UTC()
	for _, change := range changes {
		jewelry := r.items[change.JewelryID]
		jewelry.Stock += change.Delta
		jewelry.UpdatedAt = now
		r.items[change.JewelryID] = jewelry
	}
	return nil
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
var _ domain.StockBatchAdjuster = (*catalogRepositoryInMemory)(nil)
