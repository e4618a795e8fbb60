package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/jms/internal/health"
	"github.com/vladislavdragonenkov/jms/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/jms/internal/service/idempotency"
	"github.com/vladislavdragonenkov/jms/internal/service/order"
	"github.com/vladislavdragonenkov/jms/internal/service/outbox"
	"github.com/vladislavdragonenkov/jms/internal/service/registry"
	"github.com/vladislavdragonenkov/jms/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/jms/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run собирает все слои сервиса и работает до отмены контекста:
// хранилище, менеджер заказов, реестры, HTTP API, служебный сервер
// метрик и фоновые воркеры outbox и очистки idempotency-ключей.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	kafkaProducer := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	manager := order.NewManager(
		deps.Orders,
		deps.Catalog,
		deps.Customers,
		deps.Payments,
		deps.Timeline,
		deps.Outbox,
		deps.OrderCascade,
		logger.WithField("component", "order-manager"),
	)
	catalogRegistry := registry.NewCatalogRegistry(deps.Catalog, deps.Orders, logger.WithField("component", "catalog-registry"))
	customerRegistry := registry.NewCustomerRegistry(deps.Customers, deps.Orders, logger.WithField("component", "customer-registry"))
	employeeRegistry := registry.NewEmployeeRegistry(deps.Employees, logger.WithField("component", "employee-registry"))

	apiServer := httpapi.NewServer(
		manager,
		catalogRegistry,
		customerRegistry,
		employeeRegistry,
		deps.Idempotency,
		cfg.IdempotencyTTL,
		logger.WithField("component", "http"),
	)

	startWorkers(ctx, cfg, deps, kafkaProducer, logger)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.Store != nil {
		healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.Store.Ping(pingCtx)
		}))
	}
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: apiServer.Handler()}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startWorkers запускает фоновые воркеры: публикацию outbox (если настроен
// Kafka) и очистку истёкших idempotency-ключей.
func startWorkers(ctx context.Context, cfg Config, deps *Dependencies, producer *kafka.Producer, logger *log.Entry) {
	if producer != nil {
		worker := outbox.NewWorker(
			deps.Outbox,
			kafka.NewOutboxPublisher(producer, kafka.TopicOrderEvents),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, kafka.TopicDeadLetterQueue)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
		)
		go worker.Run(ctx)
	} else {
		logger.Info("kafka is not configured, outbox events stay pending")
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.Idempotency,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
	)
	go cleanup.Run(ctx)
}

// startMetricsServer запускает служебный HTTP-сервер: /metrics, /healthz, /readyz, /livez.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
