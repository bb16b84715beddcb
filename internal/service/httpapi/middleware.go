package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderUserID несёт идентификатор аутентифицированного пользователя.
	// Его проставляет вышестоящий шлюз после проверки токена.
	HeaderUserID = "X-User-Id"

	ctxUserIDKey = "userID"
)

// RequireIdentity извлекает идентификатор пользователя из заголовка.
// Запросы без него отклоняются до вызова обработчика.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			respondErrorMessage(c, http.StatusUnauthorized, "missing "+HeaderUserID+" header")
			c.Abort()
			return
		}
		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
