package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInspector читает claims токена бэкенда без проверки подписи.
// Секрет подписи знает только бэкенд контента, поэтому здесь возможны лишь
// быстрые локальные проверки: заведомо истёкший токен отсекается до того,
// как запрос уйдёт по сети.
type TokenInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector создаёт инспектор.
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// Inspect возвращает id пользователя из claims и признак истёкшего токена.
// Нечитаемый токен не считается истёкшим: окончательное слово за бэкендом.
func (t *TokenInspector) Inspect(token string) (userID int, expired bool) {
	claims := jwt.MapClaims{}
	if _, _, err := t.parser.ParseUnverified(token, claims); err != nil {
		return 0, false
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		expired = true
	}
	if id, ok := claims["id"].(float64); ok {
		userID = int(id)
	}
	return userID, expired
}
