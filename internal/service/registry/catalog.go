package registry

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// CatalogRegistry — справочник каталога украшений. Остатки он не трогает:
// единственный путь мутации остатка — условный AdjustStock хранилища,
// которым распоряжается Ledger склада.
type CatalogRegistry struct {
	catalog domain.CatalogRepository
	orders  domain.OrderRepository
	logger  *log.Entry
}

// NewCatalogRegistry создаёт справочник каталога.
func NewCatalogRegistry(catalog domain.CatalogRepository, orders domain.OrderRepository, logger *log.Entry) *CatalogRegistry {
	if logger == nil {
		logger = log.WithField("component", "catalog-registry")
	}
	return &CatalogRegistry{
		catalog: catalog,
		orders:  orders,
		logger:  logger,
	}
}

// Create добавляет украшение в каталог.
func (r *CatalogRegistry) Create(jewelry domain.Jewelry) (domain.Jewelry, error) {
	if jewelry.ID == "" {
		jewelry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	jewelry.CreatedAt = now
	jewelry.UpdatedAt = now

	if errs := jewelry.Validate(); len(errs) > 0 {
		return domain.Jewelry{}, domain.NewInvalidOperation("invalid jewelry: %v", errs[0])
	}
	if err := r.catalog.Create(jewelry); err != nil {
		return domain.Jewelry{}, err
	}

	r.logger.WithFields(log.Fields{
		"jewelry_id": jewelry.ID,
		"kind":       jewelry.Kind,
	}).Info("jewelry added to catalog")
	return jewelry, nil
}

// Get возвращает украшение по идентификатору.
func (r *CatalogRegistry) Get(id string) (domain.Jewelry, error) {
	return r.catalog.Get(id)
}

// List возвращает каталог с опциональным ограничением на количество.
func (r *CatalogRegistry) List(limit int) ([]domain.Jewelry, error) {
	return r.catalog.List(limit)
}

// UpdatePrice меняет текущую цену украшения. Цены, зафиксированные в уже
// созданных позициях заказов, не меняются.
func (r *CatalogRegistry) UpdatePrice(id string, priceMinor int64) (domain.Jewelry, error) {
	if priceMinor <= 0 {
		return domain.Jewelry{}, domain.NewInvalidOperation("jewelry price must be greater than zero, got %d", priceMinor)
	}
	if err := r.catalog.UpdatePrice(id, priceMinor); err != nil {
		return domain.Jewelry{}, err
	}
	return r.catalog.Get(id)
}

// Restock увеличивает остаток украшения на qty (приёмка товара).
func (r *CatalogRegistry) Restock(id string, qty int32) (domain.Jewelry, error) {
	if qty <= 0 {
		return domain.Jewelry{}, domain.NewInvalidOperation("restock qty must be greater than zero, got %d", qty)
	}
	if err := r.catalog.AdjustStock(id, qty); err != nil {
		return domain.Jewelry{}, err
	}
	return r.catalog.Get(id)
}

// Delete удаляет украшение, если на него не ссылается ни одна позиция заказа.
func (r *CatalogRegistry) Delete(id string) error {
	if _, err := r.catalog.Get(id); err != nil {
		return err
	}

	count, err := r.orders.CountItemsByJewelry(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.NewInvalidOperation("jewelry %s is referenced by %d order item(s) and cannot be deleted", id, count)
	}

	return r.catalog.Delete(id)
}
