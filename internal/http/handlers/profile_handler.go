package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// ProfileHandler работает с профилем текущего пользователя.
type ProfileHandler struct {
	client *strapi.Client
}

func NewProfileHandler(client *strapi.Client) *ProfileHandler {
	return &ProfileHandler{client: client}
}

// GetMe обрабатывает GET /api/profile: текущий пользователь и его профиль.
func (h *ProfileHandler) GetMe(c *gin.Context) {
	token, err := currentToken(c)
	if err != nil {
		respondError(c, err)
		return
	}

	me, err := h.client.Me(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := ensureProfile(c.Request.Context(), h.client, token, me)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "me": me, "profile": profile.Raw})
}

// UpdateMe обрабатывает POST/PUT /api/profile: частичное обновление профиля.
// Тело запроса — произвольный набор полей профиля, прокидывается как есть.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	token, err := currentToken(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil || len(patch) == 0 {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "нет полей для обновления"))
		return
	}

	me, err := h.client.Me(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := ensureProfile(c.Request.Context(), h.client, token, me)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.client.UpdateProfile(c.Request.Context(), token, profile, patch); err != nil {
		respondError(c, err)
		return
	}

	refreshed, err := h.client.FindMyProfile(c.Request.Context(), token, me.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	var raw map[string]any
	if refreshed != nil {
		raw = refreshed.Raw
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": raw})
}
