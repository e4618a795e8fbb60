package domain

// CatalogRepository описывает требования к хранилищу каталога украшений.
type CatalogRepository interface {
	// Create сохраняет новое украшение. Возвращает DuplicateKeyError, если ID занят.
	Create(jewelry Jewelry) error
	// Get возвращает украшение по идентификатору или NotFoundError.
	Get(id string) (Jewelry, error)
	// List возвращает каталог, ограничивая выборку limit (если > 0).
	List(limit int) ([]Jewelry, error)
	// UpdatePrice меняет текущую цену. Зафиксированные в заказах цены не трогает.
	UpdatePrice(id string, priceMinor int64) error
	// AdjustStock атомарно меняет остаток на delta. Для delta < 0 применяется
	// условное списание: остаток уменьшается только если его хватает, иначе
	// возвращается OutOfStockError с фактическими available/requested и
	// остаток не меняется. Это единственный путь мутации остатка.
	AdjustStock(id string, delta int32) error
	// Delete удаляет украшение из каталога.
	Delete(id string) error
}

// CustomerRepository описывает требования к справочнику клиентов.
type CustomerRepository interface {
	// Create сохраняет клиента, соблюдая уникальность tax_id и email.
	// При нарушении возвращает DuplicateKeyError с конфликтующим значением.
	Create(customer Customer) error
	// Get возвращает клиента по идентификатору или NotFoundError.
	Get(id string) (Customer, error)
	// GetByTaxID возвращает клиента по налоговому номеру или NotFoundError.
	GetByTaxID(taxID string) (Customer, error)
	// GetByEmail возвращает клиента по email или NotFoundError.
	GetByEmail(email string) (Customer, error)
	// List возвращает клиентов, ограничивая выборку limit (если > 0).
	List(limit int) ([]Customer, error)
	// Delete удаляет клиента. Ссылочную целостность проверяет вызывающий.
	Delete(id string) error
}

// EmployeeRepository описывает требования к справочнику сотрудников.
type EmployeeRepository interface {
	// Create сохраняет сотрудника, соблюдая уникальность tax_id.
	Create(employee Employee) error
	// Get возвращает сотрудника по идентификатору или NotFoundError.
	Get(id string) (Employee, error)
	// GetByTaxID возвращает сотрудника по налоговому номеру или NotFoundError.
	GetByTaxID(taxID string) (Employee, error)
	// List возвращает сотрудников, ограничивая выборку limit (если > 0).
	List(limit int) ([]Employee, error)
	// Delete удаляет сотрудника.
	Delete(id string) error
}

// OrderRepository описывает требования к хранилищу заказов.
// Заказ хранится вместе с позициями как единый агрегат.
type OrderRepository interface {
	// Create сохраняет новый заказ с позициями атомарно.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или NotFoundError.
	Get(id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(customerID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking:
	// при несовпадении версии возвращает ErrVersionConflict.
	Save(order Order) error
	// CountByCustomer возвращает число заказов клиента (для запрета удаления).
	CountByCustomer(customerID string) (int, error)
	// CountItemsByJewelry возвращает число позиций, ссылающихся на украшение.
	CountItemsByJewelry(jewelryID string) (int, error)
	// Delete удаляет заказ вместе с позициями атомарно.
	Delete(id string) error
}

// StockChange описывает одно изменение остатка в батче.
type StockChange struct {
	JewelryID string
	Delta     int32
}

// StockBatchAdjuster — необязательная способность хранилища каталога
// применять несколько изменений остатков как одну единицу работы: либо
// применяются все изменения, либо ни одно из них не фиксируется.
// Семантика каждой строки совпадает с AdjustStock.
type StockBatchAdjuster interface {
	AdjustStockBatch(changes []StockChange) error
}

// OrderCascadeDeleter удаляет заказ вместе с платежами, историей и
// позициями как одну единицу работы хранилища: при сбое ни одно из
// удалений не фиксируется. Возвращает число удалённых платежей.
type OrderCascadeDeleter interface {
	DeleteOrderCascade(orderID string) (int, error)
}

// PaymentRepository описывает требования к хранилищу платежей.
type PaymentRepository interface {
	// Append сохраняет платёж по заказу.
	Append(payment Payment) error
	// ListByOrder возвращает платежи заказа в порядке создания.
	ListByOrder(orderID string) ([]Payment, error)
	// SumByOrder возвращает сумму платежей по заказу в минимальных единицах.
	SumByOrder(orderID string) (int64, error)
	// DeleteByOrder удаляет все платежи заказа (каскад при удалении заказа).
	DeleteByOrder(orderID string) (int, error)
}
