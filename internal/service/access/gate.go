package access

import (
	"strings"

	"github.com/ashish02003/Freshify/internal/domain"
)

const roleAdmin = "admin"

// Gate проверяет права доступа к операциям над заказами.
// Аутентификация выполняется вышестоящим сервисом, сюда приходит только user id.
type Gate struct {
	users domain.UserDirectory
}

// NewGate создаёт access gate поверх справочника пользователей.
func NewGate(users domain.UserDirectory) *Gate {
	return &Gate{users: users}
}

// RequireAdmin возвращает ErrForbidden, если пользователь не админ.
func (g *Gate) RequireAdmin(userID string) (domain.UserView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserView{}, domain.ErrForbidden
	}

	user, ok := g.users.GetUser(userID)
	if !ok {
		return domain.UserView{}, domain.ErrForbidden
	}
	if !strings.EqualFold(user.Role, roleAdmin) {
		return domain.UserView{}, domain.ErrForbidden
	}

	return user, nil
}

// RequireOwner возвращает ErrForbidden, если заказ принадлежит другому пользователю.
func (g *Gate) RequireOwner(order domain.Order, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || order.UserID != userID {
		return domain.ErrForbidden
	}
	return nil
}
