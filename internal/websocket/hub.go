package schedulews

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/saeid-a/CoachAcademyBack/internal/models"
	"go.uber.org/zap"
)

// Hub fans schedule events out to every open connection of each recipient.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.ScheduleEvent
	done       chan struct{}
	log        *zap.Logger
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.ScheduleEvent, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

// Run owns the client registry until ctx is done. After it returns, Register
// and Unregister no longer block.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for userID, set := range h.clients {
				for client := range set {
					close(client.send)
				}
				delete(h.clients, userID)
			}
			return
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister is a no-op once the hub has stopped; Run already closed every
// registered client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues event for delivery. It never blocks the caller; when the
// queue is full the event is dropped.
func (h *Hub) Publish(event models.ScheduleEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("schedule event dropped", zap.String("type", event.Type), zap.Int64("session_id", event.SessionID))
	}
}

func (h *Hub) deliver(event models.ScheduleEvent) {
	encoded, err := sonic.Marshal(event)
	if err != nil {
		h.log.Error("encode schedule event", zap.Error(err))
		return
	}

	seen := make(map[int64]struct{}, len(event.Recipients))
	for _, recipient := range event.Recipients {
		if _, dup := seen[recipient]; dup {
			continue
		}
		seen[recipient] = struct{}{}
		h.sendToUser(strconv.FormatInt(recipient, 10), encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the connection so close frames are noticed. Clients do not
// send commands.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
