package orders

import (
	"strings"

	"github.com/ashish02003/Freshify/internal/domain"
	"github.com/ashish02003/Freshify/internal/service/access"
)

// Pagination описывает страницу админской выборки.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalOrders int  `json:"totalOrders"`
	HasMore     bool `json:"hasMore"`
}

// OrderView — заказ, обогащённый данными внешних справочников.
type OrderView struct {
	Order   domain.Order
	User    *domain.UserView
	Product *domain.ProductView
	Address *domain.AddressView
}

// Query реализует чтение заказов.
type Query struct {
	orders    domain.OrderRepository
	users     domain.UserDirectory
	catalog   domain.ProductCatalog
	addresses domain.AddressBook
	gate      *access.Gate
}

// NewQuery создаёт сервис чтения заказов.
func NewQuery(
	orders domain.OrderRepository,
	users domain.UserDirectory,
	catalog domain.ProductCatalog,
	addresses domain.AddressBook,
	gate *access.Gate,
) *Query {
	return &Query{
		orders:    orders,
		users:     users,
		catalog:   catalog,
		addresses: addresses,
		gate:      gate,
	}
}

// GetForUser возвращает заказ владельцу.
// Чужой заказ неотличим от несуществующего.
func (q *Query) GetForUser(userID, orderID string) (OrderView, error) {
	order, err := q.orders.GetByOrderID(strings.TrimSpace(orderID))
	if err != nil {
		return OrderView{}, err
	}
	if err := q.gate.RequireOwner(order, userID); err != nil {
		return OrderView{}, domain.ErrOrderNotFound
	}
	return q.expand(order), nil
}

// GetForAdmin возвращает любой заказ админу.
func (q *Query) GetForAdmin(adminID, orderID string) (OrderView, error) {
	if _, err := q.gate.RequireAdmin(adminID); err != nil {
		return OrderView{}, err
	}
	order, err := q.orders.GetByOrderID(strings.TrimSpace(orderID))
	if err != nil {
		return OrderView{}, err
	}
	return q.expand(order), nil
}

// ListForUser возвращает заказы покупателя, новые первыми.
func (q *Query) ListForUser(userID string, limit int) ([]OrderView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrUserRequired
	}

	orders, err := q.orders.ListByUser(userID, limit)
	if err != nil {
		return nil, err
	}
	return q.expandAll(orders), nil
}

// ListAllForAdmin возвращает страницу всех заказов.
func (q *Query) ListAllForAdmin(adminID string, page, limit int) ([]OrderView, Pagination, error) {
	if _, err := q.gate.RequireAdmin(adminID); err != nil {
		return nil, Pagination{}, err
	}

	orders, total, err := q.orders.List(page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return q.expandAll(orders), buildPagination(page, limit, total), nil
}

// ListByStatusForAdmin возвращает страницу заказов в заданном статусе.
func (q *Query) ListByStatusForAdmin(adminID string, status domain.DeliveryStatus, page, limit int) ([]OrderView, Pagination, error) {
	if _, err := q.gate.RequireAdmin(adminID); err != nil {
		return nil, Pagination{}, err
	}
	if !status.Valid() {
		return nil, Pagination{}, domain.ErrInvalidStatus
	}

	orders, total, err := q.orders.ListByStatus(status, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return q.expandAll(orders), buildPagination(page, limit, total), nil
}

// Statistics возвращает сводку по заказам для админской панели.
func (q *Query) Statistics(adminID string) (domain.OrderStatistics, error) {
	if _, err := q.gate.RequireAdmin(adminID); err != nil {
		return domain.OrderStatistics{}, err
	}
	return q.orders.Statistics()
}

// TrackForUser возвращает проекцию для страницы отслеживания.
// Чужой заказ неотличим от несуществующего.
func (q *Query) TrackForUser(userID, orderID string) (domain.Order, error) {
	order, err := q.orders.GetByOrderID(strings.TrimSpace(orderID))
	if err != nil {
		return domain.Order{}, err
	}
	if err := q.gate.RequireOwner(order, userID); err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (q *Query) expand(order domain.Order) OrderView {
	view := OrderView{Order: order}

	if q.users != nil {
		if user, ok := q.users.GetUser(order.UserID); ok {
			view.User = &user
		}
	}
	if q.catalog != nil {
		if product, ok := q.catalog.GetProduct(order.ProductID); ok {
			view.Product = &product
		}
	}
	if q.addresses != nil {
		if address, ok := q.addresses.GetAddress(order.AddressID); ok {
			view.Address = &address
		}
	}

	return view
}

func (q *Query) expandAll(orders []domain.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, q.expand(order))
	}
	return views
}

func buildPagination(page, limit, total int) Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasMore:     page < totalPages,
	}
}
