package order_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/service/order"
	"github.com/vladislavdragonenkov/jms/internal/storage/memory"
)

// env собирает менеджер на memory-хранилищах с доступом к ним для проверок.
type env struct {
	manager   *order.Manager
	orders    domain.OrderRepository
	catalog   domain.CatalogRepository
	customers domain.CustomerRepository
	payments  domain.PaymentRepository
	timeline  domain.TimelineRepository
	outbox    domain.OutboxRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		orders:    memory.NewOrderRepository(),
		catalog:   memory.NewCatalogRepository(),
		customers: memory.NewCustomerRepository(),
		payments:  memory.NewPaymentRepository(),
		timeline:  memory.NewTimelineRepository(),
		outbox:    memory.NewOutboxRepository(),
	}
	e.manager = order.NewManagerWithoutMetrics(
		e.orders, e.catalog, e.customers, e.payments, e.timeline, e.outbox,
		memory.NewOrderCascade(e.orders, e.payments, e.timeline), nil,
	)

	require.NoError(t, e.customers.Create(domain.Customer{
		ID: "customer-1", Name: "Ivan", TaxID: "100200", Email: "ivan@shop.ru",
	}))
	e.seedJewelry(t, "ring-1", 150000, 5)
	e.seedJewelry(t, "watch-1", 900000, 2)
	return e
}

func (e *env) seedJewelry(t *testing.T, id string, price int64, stock int32) {
	t.Helper()
	jewelry := domain.Jewelry{
		ID:         id,
		Name:       "Item " + id,
		Kind:       domain.JewelryKindRing,
		PriceMinor: price,
		Stock:      stock,
		Ring:       &domain.RingDetails{Size: 17},
	}
	require.NoError(t, e.catalog.Create(jewelry))
}

func (e *env) stock(t *testing.T, id string) int32 {
	t.Helper()
	jewelry, err := e.catalog.Get(id)
	require.NoError(t, err)
	return jewelry.Stock
}

func TestManagerCreateOrder(t *testing.T) {
	e := newEnv(t)

	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{
		{JewelryID: "ring-1", Qty: 2},
		{JewelryID: "watch-1", Qty: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, created.Status)
	assert.Len(t, created.Items, 2)
	// Сумма заказа — из зафиксированных цен каталога.
	assert.Equal(t, int64(2*150000+900000), created.TotalMinor)
	assert.Empty(t, created.ValidateInvariants())

	// Создание не списывает остатки.
	assert.Equal(t, int32(5), e.stock(t, "ring-1"))
	assert.Equal(t, int32(2), e.stock(t, "watch-1"))

	events, err := e.timeline.List(created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "OrderCreated", events[0].Type)

	pending, err := e.outbox.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "order.created", pending[0].EventType)
	assert.Equal(t, created.ID, pending[0].AggregateID)
}

func TestManagerCreateOrderMergesDuplicates(t *testing.T) {
	e := newEnv(t)

	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{
		{JewelryID: "ring-1", Qty: 2},
		{JewelryID: "ring-1", Qty: 1},
	})
	require.NoError(t, err)

	require.Len(t, created.Items, 1)
	assert.Equal(t, int32(3), created.Items[0].Qty)
	assert.Equal(t, int64(3*150000), created.TotalMinor)
}

func TestManagerCreateOrderRejections(t *testing.T) {
	e := newEnv(t)

	_, err := e.manager.CreateOrder("stranger", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	assert.True(t, domain.IsNotFound(err), "unknown customer: %v", err)

	_, err = e.manager.CreateOrder("customer-1", nil)
	assert.True(t, domain.IsInvalidOperation(err), "empty items: %v", err)

	_, err = e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 0}})
	assert.True(t, domain.IsInvalidOperation(err), "zero qty: %v", err)

	_, err = e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 6}})
	assert.True(t, domain.IsOutOfStock(err), "over stock: %v", err)

	_, err = e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "missing", Qty: 1}})
	assert.True(t, domain.IsNotFound(err), "unknown jewelry: %v", err)

	// Ни один отклонённый запрос не должен был оставить заказ.
	count, err := e.orders.CountByCustomer("customer-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestManagerAddItemCapturesFreshPrice(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	require.NoError(t, err)

	// Цена меняется после создания: старая позиция держит снимок,
	// новая фиксирует актуальную цену.
	require.NoError(t, e.catalog.UpdatePrice("ring-1", 200000))

	updated, err := e.manager.AddItem(created.ID, "ring-1", 2)
	require.NoError(t, err)

	require.Len(t, updated.Items, 2)
	assert.Equal(t, int64(150000), updated.Items[0].PriceMinor)
	assert.Equal(t, int64(200000), updated.Items[1].PriceMinor)
	assert.Equal(t, int64(150000+2*200000), updated.TotalMinor)
	assert.Empty(t, updated.ValidateInvariants())
}

func TestManagerAddItemTerminalGuard(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	require.NoError(t, err)
	_, err = e.manager.Transition(created.ID, domain.OrderStatusCanceled)
	require.NoError(t, err)

	_, err = e.manager.AddItem(created.ID, "ring-1", 1)
	assert.True(t, domain.IsInvalidOperation(err), "add to canceled: %v", err)
}

func TestManagerTransitionAcceptedKeepsStock(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 3}})
	require.NoError(t, err)

	accepted, err := e.manager.Transition(created.ID, domain.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, accepted.Status)
	assert.Equal(t, int32(5), e.stock(t, "ring-1"))
}

func TestManagerTransitionDeliveredConsumesStock(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{
		{JewelryID: "ring-1", Qty: 3},
		{JewelryID: "watch-1", Qty: 1},
	})
	require.NoError(t, err)
	_, err = e.manager.Transition(created.ID, domain.OrderStatusAccepted)
	require.NoError(t, err)

	delivered, err := e.manager.Transition(created.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, delivered.Status)
	assert.Equal(t, int32(2), e.stock(t, "ring-1"))
	assert.Equal(t, int32(1), e.stock(t, "watch-1"))

	// Терминальный статус: дальнейшие переходы запрещены.
	_, err = e.manager.Transition(created.ID, domain.OrderStatusCanceled)
	assert.True(t, domain.IsInvalidTransition(err), "transition from delivered: %v", err)
}

func TestManagerTransitionTable(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	require.NoError(t, err)

	// pending -> delivered запрещён: выдача только после подтверждения.
	_, err = e.manager.Transition(created.ID, domain.OrderStatusDelivered)
	assert.True(t, domain.IsInvalidTransition(err), "pending to delivered: %v", err)

	_, err = e.manager.Transition(created.ID, "shipped")
	assert.True(t, domain.IsInvalidTransition(err), "unknown status: %v", err)

	_, err = e.manager.Transition("missing", domain.OrderStatusAccepted)
	assert.True(t, domain.IsNotFound(err), "unknown order: %v", err)
}

// Отмена не возвращает остатки: до выдачи ничего не списывалось.
func TestManagerCancelRestoresNothing(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 4}})
	require.NoError(t, err)
	_, err = e.manager.Transition(created.ID, domain.OrderStatusAccepted)
	require.NoError(t, err)

	_, err = e.manager.Transition(created.ID, domain.OrderStatusCanceled)
	require.NoError(t, err)
	assert.Equal(t, int32(5), e.stock(t, "ring-1"))
}

// Нехватка по одной из позиций при выдаче: ни одна строка не списана,
// заказ остаётся в accepted.
func TestManagerDeliveredAllOrNothing(t *testing.T) {
	e := newEnv(t)
	e.seedJewelry(t, "necklace-1", 50000, 1)

	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{
		{JewelryID: "ring-1", Qty: 2},
		{JewelryID: "necklace-1", Qty: 1},
	})
	require.NoError(t, err)
	_, err = e.manager.Transition(created.ID, domain.OrderStatusAccepted)
	require.NoError(t, err)

	// Конкурент забирает последнюю единицу между подтверждением и выдачей.
	require.NoError(t, e.catalog.AdjustStock("necklace-1", -1))

	_, err = e.manager.Transition(created.ID, domain.OrderStatusDelivered)
	assert.True(t, domain.IsOutOfStock(err), "expected out of stock: %v", err)

	assert.Equal(t, int32(5), e.stock(t, "ring-1"))
	assert.Equal(t, int32(0), e.stock(t, "necklace-1"))

	current, err := e.orders.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, current.Status)
}

// Два конкурентных перехода в delivered: остаток списывается ровно один раз.
func TestManagerConcurrentDelivery(t *testing.T) {
	e := newEnv(t)
	e.seedJewelry(t, "solo-1", 70000, 1)

	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "solo-1", Qty: 1}})
	require.NoError(t, err)
	_, err = e.manager.Transition(created.ID, domain.OrderStatusAccepted)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.manager.Transition(created.ID, domain.OrderStatusDelivered)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		conflict := domain.IsVersionConflict(err) ||
			domain.IsOutOfStock(err) ||
			domain.IsInvalidTransition(err)
		assert.True(t, conflict, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int32(0), e.stock(t, "solo-1"))

	current, err := e.orders.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, current.Status)
}

func TestManagerDeleteOrderCascades(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	require.NoError(t, err)
	_, _, err = e.manager.RecordPayment(created.ID, 150000, domain.PaymentMethodCreditCard)
	require.NoError(t, err)

	require.NoError(t, e.manager.DeleteOrder(created.ID))

	_, err = e.orders.Get(created.ID)
	assert.True(t, domain.IsNotFound(err), "order must be gone: %v", err)

	payments, err := e.payments.ListByOrder(created.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	events, err := e.timeline.List(created.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.True(t, domain.IsNotFound(e.manager.DeleteOrder(created.ID)))
}

// brokenCascade имитирует сбой хранилища на каскадном удалении.
type brokenCascade struct {
	err error
}

func (c brokenCascade) DeleteOrderCascade(string) (int, error) {
	return 0, c.err
}

func TestManagerDeleteOrderFailureKeepsOrderIntact(t *testing.T) {
	e := newEnv(t)
	manager := order.NewManagerWithoutMetrics(
		e.orders, e.catalog, e.customers, e.payments, e.timeline, e.outbox,
		brokenCascade{err: errors.New("storage unavailable")}, nil,
	)

	created, err := manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 1}})
	require.NoError(t, err)
	_, _, err = manager.RecordPayment(created.ID, 500, domain.PaymentMethodCash)
	require.NoError(t, err)

	require.Error(t, manager.DeleteOrder(created.ID))

	// Сбой удаления не оставляет частичных эффектов: заказ, его платежи
	// и история по-прежнему видны целиком.
	_, err = manager.GetOrder(created.ID)
	require.NoError(t, err)

	paid, err := e.payments.SumByOrder(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), paid)

	events, err := e.timeline.List(created.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestManagerRecordPayment(t *testing.T) {
	e := newEnv(t)
	created, err := e.manager.CreateOrder("customer-1", []order.ItemRequest{{JewelryID: "ring-1", Qty: 2}})
	require.NoError(t, err)

	pmt, paid, err := e.manager.RecordPayment(created.ID, 100000, domain.PaymentMethodBankTransfer)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), pmt.AmountMinor)
	assert.Equal(t, int64(100000), paid)

	_, paid, err = e.manager.RecordPayment(created.ID, 200000, domain.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, int64(300000), paid)

	events, err := e.manager.Timeline(created.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
	}
	assert.Equal(t, []string{"OrderCreated", "PaymentRecorded", "PaymentRecorded"}, types)
}

func TestManagerTimelineUnknownOrder(t *testing.T) {
	e := newEnv(t)
	_, err := e.manager.Timeline("missing")
	assert.True(t, domain.IsNotFound(err))
}
