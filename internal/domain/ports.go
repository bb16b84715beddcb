package domain

import "time"

// UserView — облегчённое представление пользователя из внешнего сервиса аутентификации.
type UserView struct {
	ID     string
	Name   string
	Email  string
	Mobile string
	Role   string
}

// ProductView — облегчённое представление товара из каталога.
type ProductView struct {
	ID         string
	Name       string
	PriceMinor int64
	Image      []string
	Category   []string
}

// AddressView — представление адреса доставки из адресной книги.
type AddressView struct {
	ID          string
	AddressLine string
	City        string
	State       string
	Country     string
	Pincode     string
	Mobile      string
}

// UserDirectory — внешний коллаборатор, отдающий данные аутентифицированных пользователей.
// Жизненный цикл пользователей этому сервису не принадлежит.
type UserDirectory interface {
	GetUser(id string) (UserView, bool)
}

// ProductCatalog — внешний коллаборатор с живым каталогом товаров.
type ProductCatalog interface {
	GetProduct(id string) (ProductView, bool)
}

// AddressBook — внешний коллаборатор с адресами доставки пользователей.
type AddressBook interface {
	GetAddress(id string) (AddressView, bool)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
// Используется webhook-обработчиком платежей: провайдеры повторяют доставку событий.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
