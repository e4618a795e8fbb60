package inventory

import (
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
)

// Request описывает требуемое количество одного украшения.
type Request struct {
	JewelryID string
	Qty       int32
}

// Ledger управляет остатками каталога: проверяет доступность и списывает
// остатки по нескольким позициям по принципу "всё или ничего".
type Ledger struct {
	catalog domain.CatalogRepository
	logger  *log.Entry
}

// NewLedger создаёт Ledger поверх хранилища каталога.
func NewLedger(catalog domain.CatalogRepository, logger *log.Entry) *Ledger {
	if logger == nil {
		logger = log.WithField("component", "inventory-ledger")
	}
	return &Ledger{
		catalog: catalog,
		logger:  logger,
	}
}

// normalize сливает дубликаты jewelry_id, проверяет количества и сортирует
// запросы по идентификатору. Сортировка фиксирует порядок обхода строк,
// чтобы конкурентные многострочные списания не пересекались крест-накрест.
func normalize(requests []Request) ([]Request, error) {
	if len(requests) == 0 {
		return nil, domain.ErrItemsRequired
	}

	merged := make(map[string]int32, len(requests))
	order := make([]string, 0, len(requests))
	for _, req := range requests {
		if req.JewelryID == "" {
			return nil, domain.ErrJewelryIDRequired
		}
		if req.Qty <= 0 {
			return nil, domain.ErrItemQtyInvalid
		}
		if _, seen := merged[req.JewelryID]; !seen {
			order = append(order, req.JewelryID)
		}
		merged[req.JewelryID] += req.Qty
	}

	sort.Strings(order)
	result := make([]Request, 0, len(order))
	for _, id := range order {
		result = append(result, Request{JewelryID: id, Qty: merged[id]})
	}
	return result, nil
}

// CheckAvailability проверяет, что текущих остатков хватает на все запросы.
// Остатки не мутируются: физическое списание происходит только при выдаче
// заказа, поэтому проверка при создании и добавлении позиций read-only.
func (l *Ledger) CheckAvailability(requests []Request) error {
	normalized, err := normalize(requests)
	if err != nil {
		return err
	}

	for _, req := range normalized {
		jewelry, err := l.catalog.Get(req.JewelryID)
		if err != nil {
			return err
		}
		if jewelry.Stock < req.Qty {
			return &domain.OutOfStockError{
				JewelryID: req.JewelryID,
				Available: jewelry.Stock,
				Requested: req.Qty,
			}
		}
	}
	return nil
}

// ConsumeAll списывает остатки по всем запросам как одну единицу работы.
// Если хранилище умеет применять батч изменений атомарно, списание уходит
// в него одной транзакцией. Иначе каждая строка списывается атомарным
// условным декрементом, и при первом отказе уже выполненные списания
// компенсируются до возврата ошибки — частично применённое списание
// снаружи ненаблюдаемо в обоих случаях.
func (l *Ledger) ConsumeAll(requests []Request) error {
	normalized, err := normalize(requests)
	if err != nil {
		return err
	}

	if batch, ok := l.catalog.(domain.StockBatchAdjuster); ok {
		changes := make([]domain.StockChange, 0, len(normalized))
		for _, req := range normalized {
			changes = append(changes, domain.StockChange{JewelryID: req.JewelryID, Delta: -req.Qty})
		}
		return batch.AdjustStockBatch(changes)
	}

	applied := make([]Request, 0, len(normalized))
	for _, req := range normalized {
		if err := l.catalog.AdjustStock(req.JewelryID, -req.Qty); err != nil {
			l.rollback(applied)
			return err
		}
		applied = append(applied, req)
	}
	return nil
}

// Restore возвращает ранее списанное количество на склад.
// Используется как компенсация внутри одной операции; пути "отменить
// выданный заказ" в таблице переходов нет.
func (l *Ledger) Restore(jewelryID string, qty int32) error {
	if jewelryID == "" {
		return domain.ErrJewelryIDRequired
	}
	if qty <= 0 {
		return domain.ErrItemQtyInvalid
	}
	return l.catalog.AdjustStock(jewelryID, qty)
}

// rollback компенсирует уже применённые списания в обратном порядке.
func (l *Ledger) rollback(applied []Request) {
	for i := len(applied) - 1; i >= 0; i-- {
		req := applied[i]
		if err := l.catalog.AdjustStock(req.JewelryID, req.Qty); err != nil {
			// Компенсация может не пройти только если строку каталога удалили
			// конкурентно; фиксируем в логе, остаток при этом не уходит в минус.
			l.logger.WithError(err).WithFields(log.Fields{
				"jewelry_id": req.JewelryID,
				"qty":        req.Qty,
			}).Error("failed to roll back stock consumption")
		}
	}
}
