package domain

import "errors"

var (
	// Ошибка отсутствующего бизнес-идентификатора заказа.
	ErrOrderIDRequired = errors.New("orderId is required")
	// Ошибка отсутствующей ссылки на пользователя.
	ErrUserRequired = errors.New("userId is required")
	// Ошибка отсутствующей ссылки на товар.
	ErrProductRequired = errors.New("productId is required")
	// Ошибка отсутствующей ссылки на адрес доставки.
	ErrAddressRequired = errors.New("delivery_address is required")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("order amounts must be non-negative")
	// Ошибка значения delivery_status вне перечисления.
	ErrInvalidStatus = errors.New("invalid delivery status")
	// Ошибка значения cancelled_by вне перечисления.
	ErrInvalidCancelActor = errors.New("invalid cancelled_by actor")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists сигнализирует о дубликате orderId или tracking_number.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrInvalidTransition — отмена запрошена вне допустимых исходных статусов.
	ErrInvalidTransition = errors.New("order cannot be cancelled from its current status")
	// ErrForbidden — у вызывающего нет роли admin или прав владельца заказа.
	ErrForbidden = errors.New("operation is not permitted for this caller")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
