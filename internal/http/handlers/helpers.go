package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/http/middleware"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// currentToken извлекает токен бэкенда из контекста запроса.
func currentToken(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextTokenKey)
	if !exists {
		return "", apperror.ErrUnauthorized
	}

	token, ok := raw.(string)
	if !ok || token == "" {
		return "", apperror.ErrUnauthorized
	}
	return token, nil
}

// claimedUserID возвращает id пользователя из claims токена.
// 0 означает, что claims нечитаемы и id нужно спросить у бэкенда.
func claimedUserID(c *gin.Context) int {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0
	}
	id, _ := raw.(int)
	return id
}

// respondError отдаёт ошибку в формате {ok:false, error}, сохраняя статус
// и сообщение apperror и ошибок бэкенда; остальное маскируется.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "внутренняя ошибка сервера"

	var appErr *apperror.AppError
	var apiErr *strapi.APIError
	switch {
	case errors.As(err, &appErr):
		status = appErr.HTTPStatus
		message = appErr.Message
	case errors.As(err, &apiErr):
		status = apiErr.Status
		message = apiErr.Message
	default:
		logger.WithComponent("http").WithError(err).Error("необработанная ошибка хэндлера")
	}

	c.JSON(status, gin.H{"ok": false, "error": message})
}

// asFloat приводит значение из JSON к float64 для последующего клампа.
// Нечисловые значения дают NaN-подобный ноль на стороне клампа.
func asFloat(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// slugify собирает slug профиля из имени пользователя или email.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = "user"
	}
	return strings.Join(strings.Fields(s), "-")
}

// ensureProfile гарантирует, что у пользователя есть профиль разработчика,
// создавая его с базовыми полями при первом входе.
func ensureProfile(ctx context.Context, client *strapi.Client, token string, user *models.User) (*models.Profile, error) {
	profile, err := client.FindMyProfile(ctx, token, user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	base := user.Username
	if base == "" {
		base = user.Email
	}
	if _, err := client.CreateProfile(ctx, token, user.ID, map[string]any{
		"slug":         slugify(base),
		"YourName":     user.Username,
		"contactEmail": user.Email,
		"headline":     "",
	}); err != nil {
		return nil, err
	}

	// Перечитываем, чтобы вернуть профиль со всеми populate-полями.
	profile, err = client.FindMyProfile(ctx, token, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.ErrProfileNotFound
	}
	return profile, nil
}
