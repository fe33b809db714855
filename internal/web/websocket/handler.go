package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development, should be restricted in production
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler handles WebSocket connections. When greeting is not nil
// its message is queued for the client right after registration.
func WebSocketHandler(hub *Hub, baseLog *logrus.Logger, greeting func() []byte) gin.HandlerFunc {
	log := logger.NewComponentLogger(baseLog, "websocket")

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Error("Failed to upgrade connection to WebSocket")
			return
		}

		client := &Client{
			ID:      uuid.New().String(),
			Hub:     hub,
			Send:    make(chan []byte, 256),
			closeCh: make(chan struct{}),
		}

		// Register client
		client.Hub.register <- client

		if greeting != nil {
			if msg := greeting(); msg != nil {
				client.Send <- msg
			}
		}

		// Start goroutines for pumping messages
		go writePump(client, conn, log)
		go readPump(client, conn, log)

		log.WithField("client_id", client.ID).Info("New WebSocket connection established")
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func readPump(client *Client, conn *websocket.Conn, log *logger.ComponentLogger) {
	defer func() {
		client.Close()
		conn.Close()
		log.WithField("client_id", client.ID).Info("WebSocket connection closed")
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).Error("WebSocket read error")
			}
			break
		}
		// The panel only pushes, incoming messages are ignored
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func writePump(client *Client, conn *websocket.Conn, log *logger.ComponentLogger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.WithError(err).Error("Error getting next writer")
				return
			}
			w.Write(message)

			// Each message is a JSON document, so queued messages go out
			// as separate frames
			if err := w.Close(); err != nil {
				log.WithError(err).Error("Error closing writer")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.WithError(err).Error("Error sending ping")
				return
			}
		case <-client.closeCh:
			return
		}
	}
}
