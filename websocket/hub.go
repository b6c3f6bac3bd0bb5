package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sanitation-feedback-server/models"
)

const (
	MessageTypeFeedback = "feedback"

	broadcastBuffer = 64
	clientBuffer    = 256
)

// Client is one connected admin.
type Client struct {
	Hub    *Hub
	UserID uint
	Send   chan []byte
	conn   *websocket.Conn
}

// Message is the envelope pushed to clients.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Hub fans new feedback out to every connected admin. The client set is owned by Run.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	count  int
	mu     sync.RWMutex
	logger *zap.Logger
	now    func() time.Time
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Run starts the hub's main loop and returns when ctx is done, closing every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()
			h.logger.Info("websocket client registered", zap.Uint("user_id", client.UserID), zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if h.clients[client] {
				h.remove(client)
				h.logger.Info("websocket client unregistered", zap.Uint("user_id", client.UserID), zap.Int("clients", len(h.clients)))
			}

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// broadcastMessage sends a message to all connected clients, dropping any that cannot keep up.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("marshal websocket message", zap.Error(err))
		return
	}

	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("websocket client too slow, dropping", zap.Uint("user_id", client.UserID))
			h.remove(client)
		}
	}
}

// Register adds a client. After Run has returned the client's channel is closed instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a client. It is a no-op once Run has returned.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues a message for every client. It never blocks; the message is dropped
// when the queue is full.
func (h *Hub) Publish(message *Message) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message", zap.String("type", message.Type))
		return false
	}
}

// FeedbackSubmitted publishes a stored submission to connected admins.
func (h *Hub) FeedbackSubmitted(feedback models.Feedback) {
	h.Publish(&Message{
		Type:      MessageTypeFeedback,
		Timestamp: h.now(),
		Data:      feedback,
	})
}

// ClientCount returns how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
