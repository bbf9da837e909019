package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/strapi"
)

// AuthHandler отвечает за регистрацию, вход и выход.
// Токен бэкенда хранится в httpOnly cookie и не попадает в тело ответа.
type AuthHandler struct {
	client     *strapi.Client
	cookieName string
	secure     bool
}

func NewAuthHandler(client *strapi.Client, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{client: client, cookieName: cookieName, secure: secure}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register обрабатывает POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите имя пользователя, email и пароль не короче 6 символов"))
		return
	}

	result, err := h.client.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := ensureProfile(c.Request.Context(), h.client, result.JWT, &result.User); err != nil {
		// Аккаунт уже создан, профиль досоздастся при следующем входе.
		logger.WithComponent("http").WithError(err).Warn("не удалось создать профиль при регистрации")
	}

	h.setAuthCookie(c, result.JWT)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": result.User})
}

// Login обрабатывает POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.New(apperror.ErrCodeValidation, "укажите логин и пароль"))
		return
	}

	result, err := h.client.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := ensureProfile(c.Request.Context(), h.client, result.JWT, &result.User); err != nil {
		logger.WithComponent("http").WithError(err).Warn("не удалось создать профиль при входе")
	}

	h.setAuthCookie(c, result.JWT)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": result.User})
}

// Logout обрабатывает POST /api/auth/logout и сбрасывает cookie сессии.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	// maxAge 0 — сессионная cookie, время жизни ограничено exp токена.
	c.SetCookie(h.cookieName, token, 0, "/", "", h.secure, true)
}
