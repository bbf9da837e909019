package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/pkg/apperror"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/service"
	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/ws"
)

// WSHandler поднимает websocket-соединение для событий сохранения навыков.
type WSHandler struct {
	hub       *ws.Hub
	inspector *service.TokenInspector
	upgrader  websocket.Upgrader
}

func NewWSHandler(hub *ws.Hub, inspector *service.TokenInspector, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WSHandler{
		hub:       hub,
		inspector: inspector,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// Handle обрабатывает GET /api/ws. Пользователь определяется по claims
// того же cookie, что и для HTTP-запросов.
func (h *WSHandler) Handle(c *gin.Context) {
	token, err := currentToken(c)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, expired := h.inspector.Inspect(token)
	if expired || userID == 0 {
		respondError(c, apperror.ErrUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithComponent("http").WithError(err).Warn("не удалось установить websocket-соединение")
		return
	}

	// Контекст запроса гаснет после выхода из хэндлера, поэтому
	// соединение живёт на фоновом контексте до закрытия сокета.
	client := ws.NewClient(conn, h.hub, userID)
	h.hub.Register(client)
	go client.Run(context.Background())
}
