package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Event represents an order lifecycle event pushed to connected boards.
type Event struct {
	Type    string    `json:"type"`
	OrderID string    `json:"order_id"`
	Table   int       `json:"table"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}

// Board fans order events out to every connected kitchen or service
// display over websocket.
type Board struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger *zap.Logger
}

// NewBoard creates a board with no connections.
func NewBoard(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		conns:  make(map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// HandleWS upgrades the request and keeps the connection registered
// until the client goes away.
func (b *Board) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	b.mu.Lock()
	b.conns[conn] = struct{}{}
	b.mu.Unlock()

	go b.readLoop(conn)
}

// Broadcast sends an event to every connected board. Dead connections
// are dropped on write failure.
func (b *Board) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to encode board event", zap.Error(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for conn := range b.conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			delete(b.conns, conn)
		}
	}
}

// readLoop drains client messages until the connection closes. Boards
// are display-only, so incoming payloads are discarded.
func (b *Board) readLoop(conn *websocket.Conn) {
	defer func() {
		b.mu.Lock()
		delete(b.conns, conn)
		b.mu.Unlock()
		conn.Close()
	}()

	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				b.logger.Warn("websocket error", zap.Error(err))
			}
			return
		}
	}
}
