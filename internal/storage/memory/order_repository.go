package memory

import (
	"sort"
	"sync"

	"github.com/ashish02003/Freshify/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository для разработки и тестов.
// Семантика повторяет PostgreSQL-реализацию, включая optimistic locking.
type orderRepositoryInMemory struct {
	mu sync.RWMutex
	// Ключ — бизнес-идентификатор orderId: все операции сервиса ходят по нему.
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет новый заказ, если orderId и tracking_number ещё не заняты.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.OrderID]; exists {
		return domain.ErrOrderAlreadyExists
	}
	if order.TrackingNumber != "" {
		for _, existing := range r.items {
			if existing.TrackingNumber == order.TrackingNumber {
				return domain.ErrOrderAlreadyExists
			}
		}
	}

	r.items[order.OrderID] = cloneOrder(order)
	return nil
}

// GetByOrderID возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) GetByOrderID(orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[orderID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (r *orderRepositoryInMemory) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	sortNewestFirst(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// List возвращает страницу заказов (новые первыми) и общее число заказов.
func (r *orderRepositoryInMemory) List(page, limit int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		all = append(all, cloneOrder(order))
	}
	sortNewestFirst(all)

	return paginate(all, page, limit), len(all), nil
}

// ListByStatus возвращает страницу заказов с данным статусом и их общее число.
func (r *orderRepositoryInMemory) ListByStatus(status domain.DeliveryStatus, page, limit int) ([]domain.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.DeliveryStatus != status {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}
	sortNewestFirst(matched)

	return paginate(matched, page, limit), len(matched), nil
}

// Save применяет metadata-изменения с проверкой версии. История через Save не растёт:
// входящие TrackingUpdates игнорируются, хранится текущая история.
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}

	saved := cloneOrder(order)
	saved.DeliveryStatus = current.DeliveryStatus
	saved.TrackingUpdates = current.TrackingUpdates
	saved.Version++
	r.items[order.OrderID] = saved
	return nil
}

// AppendTracking атомарно фиксирует новый статус и добавляет запись истории.
func (r *orderRepositoryInMemory) AppendTracking(order domain.Order, update domain.TrackingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.OrderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}

	saved := cloneOrder(order)
	saved.TrackingUpdates = append(append([]domain.TrackingUpdate(nil), current.TrackingUpdates...), update)
	saved.DeliveryStatus = update.Status
	saved.Version++
	r.items[order.OrderID] = saved
	return nil
}

// Statistics считает агрегаты по всем заказам; выручка не учитывает отменённые.
func (r *orderRepositoryInMemory) Statistics() (domain.OrderStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats domain.OrderStatistics
	for _, order := range r.items {
		stats.TotalOrders++
		switch order.DeliveryStatus {
		case domain.DeliveryStatusPending:
			stats.PendingOrders++
		case domain.DeliveryStatusProcessing:
			stats.ProcessingOrders++
		case domain.DeliveryStatusShipped:
			stats.ShippedOrders++
		case domain.DeliveryStatusDelivered:
			stats.DeliveredOrders++
		case domain.DeliveryStatusCancelled:
			stats.CancelledOrders++
		}
		if order.DeliveryStatus != domain.DeliveryStatusCancelled {
			stats.TotalRevenueMinor += order.TotalMinor
		}
	}
	return stats, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].OrderID > orders[j].OrderID
	})
}

func paginate(orders []domain.Order, page, limit int) []domain.Order {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit
	if offset >= len(orders) {
		return []domain.Order{}
	}
	end := offset + limit
	if end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end]
}

// cloneOrder делает глубокую копию, чтобы избежать непредсказуемых мутаций извне.
func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.TrackingUpdates = append([]domain.TrackingUpdate(nil), src.TrackingUpdates...)
	dst.ProductDetails.Image = append([]string(nil), src.ProductDetails.Image...)
	if src.EstimatedDelivery != nil {
		t := *src.EstimatedDelivery
		dst.EstimatedDelivery = &t
	}
	if src.ActualDelivery != nil {
		t := *src.ActualDelivery
		dst.ActualDelivery = &t
	}
	if src.DeliveryPartner != nil {
		p := *src.DeliveryPartner
		dst.DeliveryPartner = &p
	}
	return dst
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
