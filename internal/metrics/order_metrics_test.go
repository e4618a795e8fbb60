package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetricsWithRegisterer(t *testing.T) {
	metrics := newOrderMetricsWithRegisterer(prometheus.NewRegistry())

	if metrics == nil {
		t.Fatal("newOrderMetricsWithRegisterer should not return nil")
	}

	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}

	if metrics.ordersDeleted == nil {
		t.Error("ordersDeleted counter should not be nil")
	}

	if metrics.itemsAdded == nil {
		t.Error("itemsAdded counter should not be nil")
	}

	if metrics.statusChanges == nil {
		t.Error("statusChanges counter vec should not be nil")
	}

	if metrics.outOfStock == nil {
		t.Error("outOfStock counter should not be nil")
	}

	if metrics.paymentsRecorded == nil {
		t.Error("paymentsRecorded counter should not be nil")
	}

	if metrics.operationDuration == nil {
		t.Error("operationDuration histogram vec should not be nil")
	}

	if metrics.openOrders == nil {
		t.Error("openOrders gauge should not be nil")
	}
}

func TestRegisterReusesExistingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(reg)
	second := newOrderMetricsWithRegisterer(reg)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	// Повторная инициализация с тем же registry переиспользует коллекторы.
	metric := &dto.Metric{}
	if err := second.ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOrderCreated(t *testing.T) {
	reg := prometheus.NewRegistry()

	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_orders_created_total",
		Help: "Test counter",
	})
	openOrders := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_open_orders",
		Help: "Test gauge",
	})

	reg.MustRegister(ordersCreated, openOrders)

	metrics := &OrderMetrics{
		ordersCreated: ordersCreated,
		openOrders:    openOrders,
	}

	metrics.RecordOrderCreated()

	metric := &dto.Metric{}
	if err := ordersCreated.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 1.0 {
		t.Errorf("expected counter value 1.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := openOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected open orders 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordOrderDeleted(t *testing.T) {
	reg := prometheus.NewRegistry()

	ordersDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_orders_deleted_total",
		Help: "Test counter",
	})
	openOrders := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_open_orders_delete",
		Help: "Test gauge",
	})

	reg.MustRegister(ordersDeleted, openOrders)

	metrics := &OrderMetrics{
		ordersDeleted: ordersDeleted,
		openOrders:    openOrders,
	}

	openOrders.Set(3)

	// Удаление открытого заказа уменьшает gauge, терминального — нет.
	metrics.RecordOrderDeleted(true)
	metrics.RecordOrderDeleted(false)

	metric := &dto.Metric{}
	if err := ordersDeleted.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}

	gaugeMetric := &dto.Metric{}
	if err := openOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 2.0 {
		t.Errorf("expected open orders 2.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordStatusChange(t *testing.T) {
	reg := prometheus.NewRegistry()

	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_order_status_changes_total",
		Help: "Test counter vec",
	}, []string{"to"})
	openOrders := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_open_orders_status",
		Help: "Test gauge",
	})

	reg.MustRegister(statusChanges, openOrders)

	metrics := &OrderMetrics{
		statusChanges: statusChanges,
		openOrders:    openOrders,
	}

	openOrders.Set(2)

	metrics.RecordStatusChange("accepted", false)
	metrics.RecordStatusChange("delivered", true)

	acceptedMetric := &dto.Metric{}
	if err := statusChanges.WithLabelValues("accepted").Write(acceptedMetric); err != nil {
		t.Fatalf("failed to write accepted metric: %v", err)
	}

	if acceptedMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected accepted count 1.0, got %f", acceptedMetric.Counter.GetValue())
	}

	deliveredMetric := &dto.Metric{}
	if err := statusChanges.WithLabelValues("delivered").Write(deliveredMetric); err != nil {
		t.Fatalf("failed to write delivered metric: %v", err)
	}

	if deliveredMetric.Counter.GetValue() != 1.0 {
		t.Errorf("expected delivered count 1.0, got %f", deliveredMetric.Counter.GetValue())
	}

	// Только терминальный переход закрывает заказ.
	gaugeMetric := &dto.Metric{}
	if err := openOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 1.0 {
		t.Errorf("expected open orders 1.0, got %f", gaugeMetric.Gauge.GetValue())
	}
}

func TestRecordOutOfStock(t *testing.T) {
	reg := prometheus.NewRegistry()

	outOfStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_out_of_stock_total",
		Help: "Test counter",
	})

	reg.MustRegister(outOfStock)

	metrics := &OrderMetrics{
		outOfStock: outOfStock,
	}

	metrics.RecordOutOfStock()
	metrics.RecordOutOfStock()
	metrics.RecordOutOfStock()

	metric := &dto.Metric{}
	if err := outOfStock.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 3.0 {
		t.Errorf("expected counter value 3.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordPayment(t *testing.T) {
	reg := prometheus.NewRegistry()

	paymentsRecorded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_payments_recorded_total",
		Help: "Test counter",
	})

	reg.MustRegister(paymentsRecorded)

	metrics := &OrderMetrics{
		paymentsRecorded: paymentsRecorded,
	}

	metrics.RecordPayment()
	metrics.RecordPayment()

	metric := &dto.Metric{}
	if err := paymentsRecorded.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2.0 {
		t.Errorf("expected counter value 2.0, got %f", metric.Counter.GetValue())
	}
}

func TestRecordOperationDuration(t *testing.T) {
	reg := prometheus.NewRegistry()

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_order_operation_duration_seconds",
		Help:    "Test histogram vec",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"operation"})

	reg.MustRegister(operationDuration)

	metrics := &OrderMetrics{
		operationDuration: operationDuration,
	}

	metrics.RecordOperationDuration("create_order", 50*time.Millisecond)
	metrics.RecordOperationDuration("create_order", 100*time.Millisecond)
	metrics.RecordOperationDuration("transition", 25*time.Millisecond)

	createMetric := &dto.Metric{}
	observer := operationDuration.WithLabelValues("create_order")
	if err := observer.(prometheus.Histogram).Write(createMetric); err != nil {
		t.Fatalf("failed to write create_order metric: %v", err)
	}

	if createMetric.Histogram.GetSampleCount() != 2 {
		t.Errorf("expected 2 samples for create_order, got %d", createMetric.Histogram.GetSampleCount())
	}

	// Check sum is approximately correct (0.05 + 0.1 = 0.15)
	sum := createMetric.Histogram.GetSampleSum()
	if sum < 0.14 || sum > 0.16 {
		t.Errorf("expected sum around 0.15, got %f", sum)
	}
}

func TestOrderLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()

	metrics := newOrderMetricsWithRegisterer(reg)

	metrics.RecordOrderCreated() // open: 1
	metrics.RecordOrderCreated() // open: 2
	metrics.RecordOrderCreated() // open: 3

	metrics.RecordStatusChange("accepted", false)  // open: 3
	metrics.RecordStatusChange("delivered", true)  // open: 2
	metrics.RecordStatusChange("canceled", true)   // open: 1
	metrics.RecordOrderDeleted(true)               // open: 0

	gaugeMetric := &dto.Metric{}
	if err := metrics.openOrders.Write(gaugeMetric); err != nil {
		t.Fatalf("failed to write gauge: %v", err)
	}

	if gaugeMetric.Gauge.GetValue() != 0.0 {
		t.Errorf("expected 0 open orders, got %f", gaugeMetric.Gauge.GetValue())
	}

	createdMetric := &dto.Metric{}
	if err := metrics.ordersCreated.Write(createdMetric); err != nil {
		t.Fatalf("failed to write created metric: %v", err)
	}

	if createdMetric.Counter.GetValue() != 3.0 {
		t.Errorf("expected 3 created orders, got %f", createdMetric.Counter.GetValue())
	}
}
