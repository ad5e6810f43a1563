package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	conndomain "github.com/DSaraf-Work/budget-manager-backend/internal/connection/domain"
	msgdomain "github.com/DSaraf-Work/budget-manager-backend/internal/message/domain"
	msgusecase "github.com/DSaraf-Work/budget-manager-backend/internal/message/usecase"
	syncdomain "github.com/DSaraf-Work/budget-manager-backend/internal/sync/domain"
	"github.com/DSaraf-Work/budget-manager-backend/internal/sync/usecase"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
	scheduler   *usecase.Scheduler
	fetcher     msgusecase.FetcherUsecase
}

func NewSyncHandler(syncUsecase usecase.SyncUsecase, scheduler *usecase.Scheduler, fetcher msgusecase.FetcherUsecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
		scheduler:   scheduler,
		fetcher:     fetcher,
	}
}

type syncRequest struct {
	MaxResults int    `json:"max_results"`
	HoursBack  int    `json:"hours_back"`
	SyncType   string `json:"sync_type"`
}

// TriggerSync runs one sync pass for the authenticated user
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	userID := c.GetString("userID")

	// An empty body is fine; everything has a default
	var req syncRequest
	_ = c.ShouldBindJSON(&req)

	syncType := syncdomain.SyncTypeManual
	if req.SyncType == string(syncdomain.SyncTypeScheduled) {
		syncType = syncdomain.SyncTypeScheduled
	}

	result, err := h.syncUsecase.SyncUserData(c.Request.Context(), &usecase.SyncRequest{
		UserID:     userID,
		SyncType:   syncType,
		MaxResults: req.MaxResults,
		HoursBack:  req.HoursBack,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, usecase.ErrSyncInProgress):
			status = http.StatusConflict
		case errors.Is(err, conndomain.ErrReconnectRequired):
			// User-actionable: the mailbox must be re-authorized
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error(), "retryable": status == http.StatusInternalServerError})
		return
	}

	c.JSON(http.StatusOK, result)
}

type schedulerRequest struct {
	Action          string `json:"action" binding:"required,oneof=start stop status"`
	IntervalMinutes int    `json:"interval_minutes"`
}

// ControlScheduler starts, stops or reports the batch scheduler
func (h *SyncHandler) ControlScheduler(c *gin.Context) {
	var req schedulerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "start":
		started := h.scheduler.Start(time.Duration(req.IntervalMinutes) * time.Minute)
		c.JSON(http.StatusOK, gin.H{"started": started, "status": h.scheduler.Status()})
	case "stop":
		stopped := h.scheduler.Stop()
		c.JSON(http.StatusOK, gin.H{"stopped": stopped, "status": h.scheduler.Status()})
	default:
		c.JSON(http.StatusOK, h.scheduler.Status())
	}
}

// SchedulerStatus reports the scheduler state
func (h *SyncHandler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}

// ListSyncRuns returns the user's recent run history
func (h *SyncHandler) ListSyncRuns(c *gin.Context) {
	userID := c.GetString("userID")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.syncUsecase.ListRuns(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sync_runs": runs})
}

// ListMessages exposes the raw message store for observability
func (h *SyncHandler) ListMessages(c *gin.Context) {
	userID := c.GetString("userID")

	status := msgdomain.MessageStatus(c.Query("status"))

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	msgs, err := h.fetcher.ListMessages(userID, status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
