package strapi

import (
	"context"
	"net/http"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/models"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

// Register создаёт пользователя в бэкенде и возвращает его JWT.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthResult, error) {
	payload, err := c.request(ctx, http.MethodPost, "/api/auth/local/register", "", map[string]any{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	return parseAuthResult(payload)
}

// Login выполняет вход по identifier (email или username) и паролю.
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.AuthResult, error) {
	payload, err := c.request(ctx, http.MethodPost, "/api/auth/local", "", map[string]any{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return nil, err
	}
	return parseAuthResult(payload)
}

// Me возвращает текущего пользователя по его токену.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperror.ErrUnauthorized
	}

	payload, err := c.request(ctx, http.MethodGet, "/api/users/me?populate=*", token, nil)
	if err != nil {
		return nil, err
	}

	user := parseUser(payload)
	if user.ID == 0 {
		return nil, apperror.ErrUnauthorized
	}
	return &user, nil
}

// parseAuthResult разбирает ответ /api/auth/local*: {jwt, user}.
func parseAuthResult(payload map[string]any) (*models.AuthResult, error) {
	jwt := asString(payload["jwt"])
	if jwt == "" {
		return nil, apperror.ErrInvalidCredentials
	}

	res := &models.AuthResult{JWT: jwt}
	if raw, ok := payload["user"].(map[string]any); ok {
		res.User = parseUser(raw)
	}
	return res, nil
}

func parseUser(raw map[string]any) models.User {
	flat := flatten(raw)
	return models.User{
		ID:       asInt(flat["id"]),
		Username: asString(flat["username"]),
		Email:    asString(flat["email"]),
	}
}
