package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

// maxConnsPerEmail bounds the live sockets a single subscriber may hold.
const maxConnsPerEmail = 10

// wsConn is the part of *websocket.Conn the manager writes to.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// WebSocketManager pushes delivered alert events to subscribers' open sockets.
type WebSocketManager struct {
	connections map[string]map[wsConn]bool // email -> set of connections
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWebSocketManager(logger *logging.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[wsConn]bool),
		logger:      logger,
	}
}

// AddConnection registers conn for email. It returns false when the limit is reached.
func (m *WebSocketManager) AddConnection(email string, conn wsConn) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[email]; !exists {
		m.connections[email] = make(map[wsConn]bool)
	}
	if len(m.connections[email]) >= maxConnsPerEmail {
		m.logger.Warnf("Max connections reached for %s", email)
		return false
	}
	m.connections[email][conn] = true
	m.logger.Infof("Added WebSocket connection for %s (total: %d)", email, len(m.connections[email]))
	return true
}

func (m *WebSocketManager) RemoveConnection(email string, conn wsConn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if conns, exists := m.connections[email]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.connections, email)
		}
		m.logger.Infof("Removed WebSocket connection for %s (remaining: %d)", email, len(conns))
	}
}

// SendToEmail writes message to every connection of email, dropping broken ones.
func (m *WebSocketManager) SendToEmail(email string, message []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	conns, exists := m.connections[email]
	if !exists {
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("Failed to send WebSocket message to %s: %v", email, err)
			_ = conn.Close()
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(m.connections, email)
	}
}

// Publish implements EventSink.
func (m *WebSocketManager) Publish(event models.AlertEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.Errorf("Failed to encode alert event %s: %v", event.ID, err)
		return
	}
	m.SendToEmail(event.Email, payload)
}

// Count returns the number of open connections for email.
func (m *WebSocketManager) Count(email string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.connections[email])
}
