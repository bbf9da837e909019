package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// SkillsHandler отдаёт общий каталог навыков и варианты оформления.
type SkillsHandler struct {
	client     *strapi.Client
	cookieName string
}

func NewSkillsHandler(client *strapi.Client, cookieName string) *SkillsHandler {
	return &SkillsHandler{client: client, cookieName: cookieName}
}

// List обрабатывает GET /api/skills. Каталог доступен и без сессии:
// при отсутствии cookie запрос уходит с серверным токеном.
func (h *SkillsHandler) List(c *gin.Context) {
	token, _ := c.Cookie(h.cookieName)

	items, err := h.client.ListSkills(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
}

// HeroDesigns обрабатывает GET /api/hero-designs: активные макеты
// hero-блока с превью.
func (h *SkillsHandler) HeroDesigns(c *gin.Context) {
	payload, err := h.client.ListHeroDesigns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": payload["data"], "meta": payload["meta"]})
}
