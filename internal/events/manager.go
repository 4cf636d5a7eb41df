package events

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Manager fans events out to every connected client over WebSocket. It
// implements Publisher; services never touch the transport directly.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	mutex      sync.RWMutex
	upgrader   websocket.Upgrader
	done       chan struct{}
}

// NewManager creates a new fan-out manager
func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// In production, implement proper origin checking
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		done: make(chan struct{}),
	}
}

// Start begins the manager's main loop
func (m *Manager) Start() error {
	go m.run()
	log.Println("Event fan-out manager started")
	return nil
}

// Stop gracefully shuts down the manager
func (m *Manager) Stop() error {
	close(m.done)

	m.mutex.Lock()
	for _, client := range m.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	m.mutex.Unlock()

	log.Println("Event fan-out manager stopped")
	return nil
}

func (m *Manager) run() {
	ticker := time.NewTicker(30 * time.Second) // Health check interval
	defer ticker.Stop()

	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client.ID] = client
			m.mutex.Unlock()
			log.Printf("Client %s registered", client.ID)
			go m.handleClient(client)

		case client := <-m.unregister:
			m.mutex.Lock()
			if _, ok := m.clients[client.ID]; ok {
				delete(m.clients, client.ID)
				close(client.Send)
				if client.Conn != nil {
					client.Conn.Close()
				}
			}
			m.mutex.Unlock()
			log.Printf("Client %s unregistered", client.ID)

		case event := <-m.broadcast:
			m.broadcastToClients(event)

		case <-ticker.C:
			m.healthCheck()

		case <-m.done:
			return
		}
	}
}

// RegisterClient registers a new WebSocket client
func (m *Manager) RegisterClient(clientID string, conn *websocket.Conn) error {
	client := &Client{
		ID:       clientID,
		Conn:     conn,
		Send:     make(chan Event, 64),
		LastPing: time.Now(),
		IsActive: true,
	}

	m.register <- client
	return nil
}

// UnregisterClient removes a WebSocket client
func (m *Manager) UnregisterClient(clientID string) error {
	m.mutex.RLock()
	client, exists := m.clients[clientID]
	m.mutex.RUnlock()

	if exists {
		m.unregister <- client
	}
	return nil
}

// Publish enqueues an event for delivery to every connected client.
// Returns an error when the broadcast channel is full; the event is
// dropped in that case, matching the best-effort contract.
func (m *Manager) Publish(event Event) error {
	select {
	case m.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full, dropping %s event", event.Type)
	}
}

// ConnectedClients returns the number of connected clients
func (m *Manager) ConnectedClients() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// GetClientStats returns detailed client statistics
func (m *Manager) GetClientStats() ClientStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	stats := ClientStats{
		TotalClients: len(m.clients),
	}

	for _, client := range m.clients {
		if client.IsActive {
			stats.ActiveClients++
		} else {
			stats.InactiveClients++
		}
	}

	return stats
}

// GetUpgrader returns the WebSocket upgrader for the HTTP handler
func (m *Manager) GetUpgrader() *websocket.Upgrader {
	return &m.upgrader
}

// broadcastToClients delivers an event to every client. There is no
// per-client targeting: every subscriber sees every event. Holds the write
// lock: a stalled client is flagged inactive in place, and GetClientStats
// reads that flag.
func (m *Manager) broadcastToClients(event Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, client := range m.clients {
		select {
		case client.Send <- event:
		default:
			// Client's send channel is full, mark as inactive
			client.IsActive = false
			log.Printf("Client %s send channel full, marking as inactive", client.ID)
		}
	}
}

// handleClient manages an individual client connection
func (m *Manager) handleClient(client *Client) {
	defer func() {
		m.unregister <- client
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.LastPing = time.Now()
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go m.writeMessages(client)

	// Drain incoming messages; clients only send pings back
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for client %s: %v", client.ID, err)
			}
			break
		}
	}
}

// writeMessages handles outgoing messages to a client
func (m *Manager) writeMessages(client *Client) {
	ticker := time.NewTicker(54 * time.Second) // Send ping every 54 seconds
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(event); err != nil {
				log.Printf("Error writing event to client %s: %v", client.ID, err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("Error sending ping to client %s: %v", client.ID, err)
				return
			}
		}
	}
}

// healthCheck removes clients that stopped answering pings
func (m *Manager) healthCheck() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	for clientID, client := range m.clients {
		if now.Sub(client.LastPing) > 90*time.Second {
			log.Printf("Client %s timed out, removing", clientID)
			delete(m.clients, clientID)
			close(client.Send)
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}
