package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/catalog"
	"github.com/ashish02003/Freshify/internal/service/users"
	"github.com/ashish02003/Freshify/internal/storage/memory"
	"github.com/ashish02003/Freshify/internal/storage/postgres"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store       *postgres.Store
	Orders      domain.OrderRepository
	Outbox      domain.OutboxRepository
	Idempotency domain.IdempotencyRepository
	Users       domain.UserDirectory
	Addresses   domain.AddressBook
	Catalog     domain.ProductCatalog
	Logger      *log.Entry
}

// NewDependencies создаёт и инициализирует все зависимости приложения.
// При пустом dsn используется in-memory хранилище (dev/demo режим).
// NOTE: справочники пользователей, адресов и каталога здесь mock-реализации;
// в production их заменяют клиенты сервисов аутентификации и каталога.
func NewDependencies(ctx context.Context, dsn string, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	directory := users.NewMockDirectory()
	productCatalog := catalog.NewMockCatalog()

	deps := &Dependencies{
		Users:     directory,
		Addresses: directory,
		Catalog:   productCatalog,
		Logger:    logger,
	}

	if dsn == "" {
		logger.Info("postgres dsn is empty, using in-memory storage")
		deps.Orders = memory.NewOrderRepository()
		deps.Outbox = memory.NewOutboxRepository()
		deps.Idempotency = memory.NewIdempotencyRepository()
		return deps, nil
	}

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("postgres storage initialized")
	deps.Store = store
	deps.Orders = postgres.NewOrderRepository(store)
	deps.Outbox = postgres.NewOutboxRepository(store)
	deps.Idempotency = postgres.NewIdempotencyRepository(store)
	return deps, nil
}

// Close освобождает ресурсы зависимостей.
func (d *Dependencies) Close() error {
	if d.Store != nil {
		return d.Store.Close()
	}
	return nil
}
