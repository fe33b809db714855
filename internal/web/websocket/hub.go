package websocket

import (
	"sync"

	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/sirupsen/logrus"
)

// Client represents a WebSocket client connection
type Client struct {
	ID        string
	Send      chan []byte
	Hub       *Hub
	mu        sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    bool
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Channel for broadcasting messages to all clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Logger
	log *logger.ComponentLogger

	// Mutex for thread safety
	mu sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		log:        logger.NewComponentLogger(log, "websocket_hub"),
	}
}

// Run starts the hub's message handling loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.log.WithField("clients", len(h.clients)).Info("New client connected")
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
				h.log.WithField("clients", len(h.clients)).Info("Client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
					// Message sent successfully
				default:
					// Client is not keeping up, drop it
					client.closeSend()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(message []byte) {
	h.broadcast <- message
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// closeSend closes the send channel once
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// Close unregisters the client and stops its write pump
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closeCh)
		c.Hub.unregister <- c
	})
}
