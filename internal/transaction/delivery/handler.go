package delivery

import (
	"net/http"
	"strconv"

	txndomain "github.com/DSaraf-Work/budget-manager-backend/internal/transaction/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/transaction/usecase"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	txnUsecase usecase.TransactionUsecase
}

func NewTransactionHandler(txnUsecase usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{
		txnUsecase: txnUsecase,
	}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID := c.GetString("userID")

	var req usecase.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.txnUsecase.Create(userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, txn)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID := c.GetString("userID")

	status := txndomain.ReviewStatus(c.Query("status"))

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	txns, err := h.txnUsecase.List(userID, status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txns})
}

func (h *TransactionHandler) Approve(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	txn, err := h.txnUsecase.Approve(userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Reject(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	txn, err := h.txnUsecase.Reject(userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, txn)
}

func (h *TransactionHandler) Edit(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var req usecase.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	txn, err := h.txnUsecase.Edit(userID, id, &req)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, txn)
}
