package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated    prometheus.Counter
	ordersDeleted    prometheus.Counter
	itemsAdded       prometheus.Counter
	statusChanges    *prometheus.CounterVec
	outOfStock       prometheus.Counter
	paymentsRecorded prometheus.Counter

	// Гистограмма времени выполнения операций
	operationDuration *prometheus.HistogramVec

	// Gauge для заказов в нетерминальных статусах
	openOrders prometheus.Gauge
}

// NewOrderMetrics создаёт экземпляр метрик в default registry.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jms_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jms_orders_deleted_total",
			Help: "Total number of orders deleted with their items and payments",
		}),
		itemsAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jms_order_items_added_total",
			Help: "Total number of items added to existing orders",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "jms_order_status_changes_total",
			Help: "Total number of order status transitions grouped by target status",
		}, []string{"to"}),
		outOfStock: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jms_out_of_stock_rejections_total",
			Help: "Total number of operations rejected due to insufficient stock",
		}),
		paymentsRecorded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "jms_payments_recorded_total",
			Help: "Total number of payments recorded against orders",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "jms_order_operation_duration_seconds",
			Help:    "Duration of order lifecycle operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		openOrders: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "jms_open_orders",
			Help: "Current number of orders in non-terminal statuses",
		}),
	}
}

// RecordOrderCreated учитывает созданный заказ.
func (m *OrderMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
	m.openOrders.Inc()
}

// RecordOrderDeleted учитывает удалённый заказ.
// wasOpen — находился ли заказ в нетерминальном статусе.
func (m *OrderMetrics) RecordOrderDeleted(wasOpen bool) {
	m.ordersDeleted.Inc()
	if wasOpen {
		m.openOrders.Dec()
	}
}

// RecordItemAdded учитывает добавленную позицию.
func (m *OrderMetrics) RecordItemAdded() {
	m.itemsAdded.Inc()
}

// RecordStatusChange учитывает переход статуса.
// terminal — стал ли заказ терминальным после перехода.
func (m *OrderMetrics) RecordStatusChange(to string, terminal bool) {
	m.statusChanges.WithLabelValues(to).Inc()
	if terminal {
		m.openOrders.Dec()
	}
}

// RecordOutOfStock учитывает отказ из-за нехватки остатка.
func (m *OrderMetrics) RecordOutOfStock() {
	m.outOfStock.Inc()
}

// RecordPayment учитывает зарегистрированный платёж.
func (m *OrderMetrics) RecordPayment() {
	m.paymentsRecorded.Inc()
}

// RecordOperationDuration учитывает длительность операции.
func (m *OrderMetrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	counter := prometheus.NewCounter(opts)
	return register(registerer, counter, opts.Name).(prometheus.Counter)
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(opts, labels)
	return register(registerer, vec, opts.Name).(*prometheus.CounterVec)
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	vec := prometheus.NewHistogramVec(opts, labels)
	return register(registerer, vec, opts.Name).(*prometheus.HistogramVec)
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	gauge := prometheus.NewGauge(opts)
	return register(registerer, gauge, opts.Name).(prometheus.Gauge)
}

// register регистрирует коллектор, переиспользуя уже зарегистрированный
// экземпляр при повторной инициализации (например, в тестах).
func register(registerer prometheus.Registerer, collector prometheus.Collector, name string) prometheus.Collector {
	if err := registerer.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if asAlreadyRegistered(err, &are) {
			return are.ExistingCollector
		}
		panic(fmt.Sprintf("register metric %s: %v", name, err))
	}
	return collector
}

func asAlreadyRegistered(err error, target *prometheus.AlreadyRegisteredError) bool {
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if ok {
		*target = are
	}
	return ok
}
