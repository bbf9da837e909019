package strapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
)

func TestLogin(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/local", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"jwt":  "token-123",
			"user": map[string]any{"id": 9, "username": "dev", "email": "dev@example.com"},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	result, err := client.Login(context.Background(), "dev@example.com", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "token-123", result.JWT)
	assert.Equal(t, 9, result.User.ID)
	assert.Equal(t, "dev", result.User.Username)
}

func TestLogin_BadCredentials(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"message": "Invalid identifier or password"},
		})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	_, err := client.Login(context.Background(), "dev@example.com", "wrong")

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid identifier or password", apiErr.Message)
}

func TestMe_EmptyTokenSkipsNetwork(t *testing.T) {
	backend, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		t.Error("неожиданный запрос к бэкенду")
	})
	defer srv.Close()

	client := NewClient(srv.URL, "", 0)
	_, err := client.Me(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Empty(t, backend.requests)
}

func TestRequest_UserTokenOverridesAPIToken(t *testing.T) {
	_, srv := newTestBackend(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": 9, "username": "dev"})
	})
	defer srv.Close()

	client := NewClient(srv.URL, "server-token", 0)
	_, err := client.Me(context.Background(), "user-token")
	assert.NoError(t, err)
}

func TestFlatten(t *testing.T) {
	// v5: уже плоский
	flat := flatten(map[string]any{"id": 1, "level": 50})
	assert.Equal(t, 50, asInt(flat["level"]))

	// v4: attributes поднимаются на верхний уровень
	flat = flatten(map[string]any{
		"id":         2.0,
		"documentId": "doc-2",
		"attributes": map[string]any{"level": 70.0},
	})
	assert.Equal(t, 2, asInt(flat["id"]))
	assert.Equal(t, "doc-2", asString(flat["documentId"]))
	assert.Equal(t, 70, asInt(flat["level"]))

	assert.Nil(t, flatten(nil))
}

func TestMediaURL(t *testing.T) {
	client := NewClient("http://backend:1337", "", 0)

	assert.Equal(t, "", client.MediaURL(""))
	assert.Equal(t, "https://cdn.example.com/a.png", client.MediaURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "http://backend:1337/uploads/a.png", client.MediaURL("/uploads/a.png"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage(map[string]any{
		"error": map[string]any{"message": "boom"},
	}, "fallback"))
	assert.Equal(t, "plain", errorMessage(map[string]any{"message": "plain"}, "fallback"))
	assert.Equal(t, "fallback", errorMessage(nil, "fallback"))
}
