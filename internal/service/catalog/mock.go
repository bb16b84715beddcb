package catalog

import (
	"sync"

	"github.com/ashish02003/Freshify/internal/domain"
)

// MockCatalog — конфигурируемая заглушка ProductCatalog.
// Живой каталог товаров принадлежит другому сервису, здесь хранится снапшот.
type MockCatalog struct {
	mu       sync.Mutex
	products map[string]domain.ProductView

	GetCalls int
}

// NewMockCatalog возвращает каталог с несколькими товарами по умолчанию.
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		products: map[string]domain.ProductView{
			"prod-bananas": {
				ID:         "prod-bananas",
				Name:       "Organic Bananas 1kg",
				PriceMinor: 6900,
				Image:      []string{"https://cdn.freshify.example/bananas.jpg"},
				Category:   []string{"fruits"},
			},
			"prod-milk": {
				ID:         "prod-milk",
				Name:       "Whole Milk 1L",
				PriceMinor: 7500,
				Image:      []string{"https://cdn.freshify.example/milk.jpg"},
				Category:   []string{"dairy"},
			},
		},
	}
}

// Put добавляет или заменяет товар в каталоге.
func (m *MockCatalog) Put(product domain.ProductView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
}

// GetProduct возвращает товар по id и считает вызовы.
func (m *MockCatalog) GetProduct(id string) (domain.ProductView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls++
	product, ok := m.products[id]
	return product, ok
}

var _ domain.ProductCatalog = (*MockCatalog)(nil)
