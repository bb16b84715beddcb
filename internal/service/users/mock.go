package users

import (
	"sync"

	"github.com/ashish02003/Freshify/internal/domain"
)

// MockDirectory — конфигурируемая заглушка UserDirectory и AddressBook.
// Учётные записи и адреса принадлежат сервису аутентификации,
// здесь хранится локальный снапшот для обогащения ответов.
type MockDirectory struct {
	mu        sync.Mutex
	users     map[string]domain.UserView
	addresses map[string]domain.AddressView
}

// NewMockDirectory возвращает справочник с админом и покупателем по умолчанию.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		users: map[string]domain.UserView{
			"admin-1": {ID: "admin-1", Name: "Freshify Admin", Email: "admin@freshify.example", Role: "admin"},
			"user-1":  {ID: "user-1", Name: "Ashish Kumar", Email: "ashish@freshify.example", Mobile: "+919900112233", Role: "user"},
		},
		addresses: map[string]domain.AddressView{
			"addr-1": {
				ID:          "addr-1",
				AddressLine: "221B MG Road",
				City:        "Bengaluru",
				State:       "Karnataka",
				Country:     "India",
				Pincode:     "560001",
				Mobile:      "+919900112233",
			},
		},
	}
}

// PutUser добавляет или заменяет пользователя.
func (m *MockDirectory) PutUser(user domain.UserView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

// PutAddress добавляет или заменяет адрес.
func (m *MockDirectory) PutAddress(address domain.AddressView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address.ID] = address
}

// GetUser возвращает пользователя по id.
func (m *MockDirectory) GetUser(id string) (domain.UserView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	return user, ok
}

// GetAddress возвращает адрес по id.
func (m *MockDirectory) GetAddress(id string) (domain.AddressView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	address, ok := m.addresses[id]
	return address, ok
}

var (
	_ domain.UserDirectory = (*MockDirectory)(nil)
	_ domain.AddressBook   = (*MockDirectory)(nil)
)
