package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jms/internal/domain"
	"github.com/vladislavdragonenkov/jms/internal/storage/memory"
	"github.com/vladislavdragonenkov/jms/internal/storage/postgres"
)

// Dependencies содержит хранилища приложения, собранные под выбранный драйвер.
type Dependencies struct {
	Orders      domain.OrderRepository
	Catalog     domain.CatalogRepository
	Customers   domain.CustomerRepository
	Employees   domain.EmployeeRepository
	Payments    domain.PaymentRepository
	Timeline    domain.TimelineRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository

	// OrderCascade удаляет заказ с платежами и историей как одну единицу работы.
	OrderCascade domain.OrderCascadeDeleter

	// Store не nil только для postgres-драйвера.
	Store  *postgres.Store
	Logger *log.Entry
}

// NewDependencies собирает зависимости под cfg.StorageDriver.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		return newMemoryDependencies(logger), nil
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newMemoryDependencies(logger *log.Entry) *Dependencies {
	deps := &Dependencies{
		Orders:      memory.NewOrderRepository(),
		Catalog:     memory.NewCatalogRepository(),
		Customers:   memory.NewCustomerRepository(),
		Employees:   memory.NewEmployeeRepository(),
		Payments:    memory.NewPaymentRepository(),
		Timeline:    memory.NewTimelineRepository(),
		Outbox:      memory.NewOutboxRepository(),
		Idempotency: memory.NewIdempotencyRepository(),
		Logger:      logger,
	}
	deps.OrderCascade = memory.NewOrderCascade(deps.Orders, deps.Payments, deps.Timeline)
	return deps
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres driver requires JMS_POSTGRES_DSN")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	return &Dependencies{
		Orders:       postgres.NewOrderRepository(store),
		Catalog:      postgres.NewCatalogRepository(store),
		Customers:    postgres.NewCustomerRepository(store),
		Employees:    postgres.NewEmployeeRepository(store),
		Payments:     postgres.NewPaymentRepository(store),
		Timeline:     postgres.NewTimelineRepository(store),
		Outbox:       postgres.NewOutboxRepository(store),
		Idempotency:  postgres.NewIdempotencyRepository(store),
		OrderCascade: postgres.NewOrderCascade(store),
		Store:        store,
		Logger:       logger,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() {
	if d.Store == nil {
		return
	}
	if err := d.Store.Close(); err != nil {
		d.Logger.WithError(err).Warn("close postgres store")
	}
}
