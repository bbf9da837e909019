package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// PublicHandler отдаёт опубликованные портфолио без авторизации.
type PublicHandler struct {
	client *strapi.Client
}

func NewPublicHandler(client *strapi.Client) *PublicHandler {
	return &PublicHandler{client: client}
}

// Portfolio обрабатывает GET /api/u/:slug.
func (h *PublicHandler) Portfolio(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите slug портфолио"))
		return
	}

	profile, err := h.client.FindProfileBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}
	if profile == nil {
		respondError(c, apperror.New(apperror.ErrCodeNotFound, "портфолио не найдено"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile.Raw})
}
