package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с начальной историей.
	// Возвращает ErrOrderAlreadyExists при дубликате orderId/tracking_number.
	Create(order Order) error
	// GetByOrderID возвращает заказ по бизнес-идентификатору или ErrOrderNotFound.
	GetByOrderID(orderID string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми (limit>0 ограничивает выборку).
	ListByUser(userID string, limit int) ([]Order, error)
	// List возвращает страницу заказов (новые первыми) и общее число заказов.
	List(page, limit int) ([]Order, int, error)
	// ListByStatus возвращает страницу заказов с данным delivery_status и их общее число.
	ListByStatus(status DeliveryStatus, page, limit int) ([]Order, int, error)
	// Save применяет metadata-изменения заказа с учётом optimistic locking.
	// История доставки через Save не растёт.
	Save(order Order) error
	// AppendTracking атомарно сохраняет новый delivery_status заказа и добавляет
	// запись истории: читатель никогда не видит одно без другого.
	AppendTracking(order Order, update TrackingUpdate) error
	// Statistics считает агрегаты для админской панели.
	Statistics() (OrderStatistics, error)
}
