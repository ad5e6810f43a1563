package delivery

import (
	"net/http"

	"github.com/DSaraf-Work/budget-manager-backend/internal/connection/usecase"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connUsecase usecase.ConnectionUsecase
}

func NewConnectionHandler(connUsecase usecase.ConnectionUsecase) *ConnectionHandler {
	return &ConnectionHandler{
		connUsecase: connUsecase,
	}
}

// GetAuthURL returns the Google consent URL for linking a mailbox
func (h *ConnectionHandler) GetAuthURL(c *gin.Context) {
	userID := c.GetString("userID")
	c.JSON(http.StatusOK, gin.H{"auth_url": h.connUsecase.AuthURL(userID)})
}

type callbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// Callback exchanges the authorization code and links the mailbox
func (h *ConnectionHandler) Callback(c *gin.Context) {
	userID := c.GetString("userID")

	var req callbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.connUsecase.Connect(c.Request.Context(), userID, req.Code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, conn)
}

// ListConnections lists the user's connections; tokens are never serialized
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	userID := c.GetString("userID")

	conns, err := h.connUsecase.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

type disconnectRequest struct {
	ConnectionID string `json:"connection_id" binding:"required"`
}

// Disconnect revokes provider access and deactivates the connection
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")

	var req disconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.connUsecase.Disconnect(c.Request.Context(), userID, req.ConnectionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "connection disconnected"})
}
