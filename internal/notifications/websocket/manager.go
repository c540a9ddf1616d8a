package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"founder-portal/ops-portal/ops-portal-backend/internal/notifications"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Manager keeps the set of live dashboard connections and broadcasts events to them.
type Manager struct {
	connections map[string]*Connection
	mu          sync.RWMutex
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID        string
	Conn      *websocket.Conn
	Send      chan notifications.Event
	UserAgent string
	closeOnce sync.Once
}

// NewManager creates a new WebSocket manager
func NewManager(allowOrigin string, logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowOrigin == "" || allowOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowOrigin
			},
		},
	}
}

// HandleConnection upgrades the request and starts pumping events to it.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}

	connection := &Connection{
		ID:        uuid.New().String(),
		Conn:      conn,
		Send:      make(chan notifications.Event, sendBuffer),
		UserAgent: r.Header.Get("User-Agent"),
	}

	m.mu.Lock()
	m.connections[connection.ID] = connection
	m.mu.Unlock()

	m.logger.Debug("Dashboard connected", zap.String("connection_id", connection.ID))

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// Publish implements notifications.Publisher.
func (m *Manager) Publish(eventType notifications.EventType, data interface{}) {
	m.Broadcast(notifications.Event{Type: eventType, Data: data, Timestamp: time.Now()})
}

// Broadcast queues ev on every connection. Slow consumers are dropped.
func (m *Manager) Broadcast(ev notifications.Event) {
	m.mu.RLock()
	var slow []*Connection
	for _, conn := range m.connections {
		select {
		case conn.Send <- ev:
		default:
			slow = append(slow, conn)
		}
	}
	m.mu.RUnlock()

	for _, conn := range slow {
		m.logger.Warn("Dropping slow dashboard connection", zap.String("connection_id", conn.ID))
		m.remove(conn)
	}
}

// ConnectionCount returns the number of live connections
func (m *Manager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

func (m *Manager) remove(conn *Connection) {
	m.mu.Lock()
	if _, ok := m.connections[conn.ID]; ok {
		delete(m.connections, conn.ID)
	}
	m.mu.Unlock()
	conn.closeOnce.Do(func() { close(conn.Send) })
}

// readPump drains client frames so pongs and close messages are processed.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.remove(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("Dashboard connection closed", zap.String("connection_id", conn.ID), zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued events to the WebSocket connection
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
