package ws

import (
	"encoding/json"
	"sync"

	"github.com/mahmoudeee665-sudo/mv-portfolio-web/internal/logger"
)

// Hub рассылает события хода батч-сохранения дашборду пользователя.
type Hub struct {
	mu         sync.RWMutex
	clients    map[int]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	userID  int
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 32),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// CommitEvent отправляет событие сохранения всем соединениям пользователя.
// Контракт сообщения: "type" — имя события, "data" — полезная нагрузка.
func (h *Hub) CommitEvent(userID int, event string, payload map[string]any) {
	raw, err := json.Marshal(map[string]any{
		"type": event,
		"data": payload,
	})
	if err != nil {
		logger.WithComponent("ws").WithError(err).Warn("не удалось сериализовать событие")
		return
	}
	h.broadcast <- message{userID: userID, payload: raw}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID int, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент: закрываем, чтобы не копить бэклог.
			go client.Close()
		}
	}
}
