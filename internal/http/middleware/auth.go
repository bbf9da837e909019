package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextTokenKey  = "strapiToken"
	ContextUserIDKey = "userID"
)

// AuthMiddleware достаёт токен бэкенда из httpOnly cookie.
// Подпись токена проверить нельзя (секрет у бэкенда контента), поэтому
// локально отсекаются только заведомо истёкшие токены.
func AuthMiddleware(cookieName string, inspector *service.TokenInspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "требуется авторизация"})
			return
		}

		userID, expired := inspector.Inspect(token)
		if expired {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "сессия истекла, войдите заново"})
			return
		}

		c.Set(ContextTokenKey, token)
		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}
