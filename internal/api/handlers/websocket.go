package handlers

import (
	"log"
	"net/http"
	"strings"

	"rentwheels-backend/internal/events"
	"rentwheels-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebSocketHandler handles WebSocket connections for real-time updates
type WebSocketHandler struct {
	manager *events.Manager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(manager *events.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket for change notifications
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// Accept the token from a query parameter or the Authorization header;
	// browsers cannot set headers on WebSocket upgrade requests.
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if token == "" {
		log.Printf("WebSocket connection rejected: no token provided")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication token required"})
		return
	}

	jwtService := jwt.NewJWTService()
	if _, err := jwtService.ValidateAccessToken(token); err != nil {
		log.Printf("WebSocket connection rejected: invalid token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}

	clientID := uuid.New().String()

	conn, err := h.manager.GetUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection to WebSocket: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to upgrade to WebSocket"})
		return
	}

	if err := h.manager.RegisterClient(clientID, conn); err != nil {
		log.Printf("Failed to register WebSocket client: %v", err)
		conn.Close()
		return
	}

	log.Printf("WebSocket client %s connected", clientID)
}

// GetConnectedClients returns the number of connected WebSocket clients
func (h *WebSocketHandler) GetConnectedClients(c *gin.Context) {
	count := h.manager.ConnectedClients()
	stats := h.manager.GetClientStats()

	c.JSON(http.StatusOK, gin.H{
		"connectedClients": count,
		"stats":            stats,
	})
}

// DisconnectClient allows manual disconnection of a client (for admin purposes)
func (h *WebSocketHandler) DisconnectClient(c *gin.Context) {
	clientID := c.Param("clientId")
	if clientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Client ID is required"})
		return
	}

	err := h.manager.UnregisterClient(clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disconnect client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client disconnected successfully"})
}
