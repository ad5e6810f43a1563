package delivery

import (
	"net/http"

	"github.com/DSaraf-Work/budget-manager-backend/internal/trustedsender/usecase"

	"github.com/gin-gonic/gin"
)

type TrustedSenderHandler struct {
	senderUsecase usecase.TrustedSenderUsecase
}

func NewTrustedSenderHandler(senderUsecase usecase.TrustedSenderUsecase) *TrustedSenderHandler {
	return &TrustedSenderHandler{
		senderUsecase: senderUsecase,
	}
}

func (h *TrustedSenderHandler) ListSenders(c *gin.Context) {
	userID := c.GetString("userID")

	senders, err := h.senderUsecase.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trusted_senders": senders})
}

type createSenderRequest struct {
	Pattern     string `json:"pattern" binding:"required"`
	AutoApprove bool   `json:"auto_approve"`
}

func (h *TrustedSenderHandler) CreateSender(c *gin.Context) {
	userID := c.GetString("userID")

	var req createSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sender, err := h.senderUsecase.Create(userID, req.Pattern, req.AutoApprove)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sender)
}

type updateSenderRequest struct {
	IsActive    bool `json:"is_active"`
	AutoApprove bool `json:"auto_approve"`
}

func (h *TrustedSenderHandler) UpdateSender(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req updateSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sender, err := h.senderUsecase.Update(userID, id, req.IsActive, req.AutoApprove)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sender)
}

func (h *TrustedSenderHandler) DeleteSender(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.senderUsecase.Delete(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "trusted sender removed"})
}
