package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/models"
	"docusign-envelope-sync/internal/syncer"
)

// TriggerSync runs an envelope sync. An empty body means incremental;
// days_back or force_full request an explicit window.
func (h *Handlers) TriggerSync(c *gin.Context) {
	var req models.SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.Validation("invalid request body: %v", err))
			return
		}
	}

	if req.DaysBack != nil && *req.DaysBack <= 0 {
		respondError(c, apperr.Validation("days_back must be greater than 0"))
		return
	}

	result, err := h.syncer.Run(c.Request.Context(), syncer.Options{
		DaysBack:  req.DaysBack,
		ForceFull: req.ForceFull,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SyncResponse{
		Status:      "success",
		SyncedCount: result.SyncedCount,
		Message:     fmt.Sprintf("Synced %d envelopes from %s", result.SyncedCount, result.Window),
	})
}

// GetSyncStatus returns the most recent sync attempt
func (h *Handlers) GetSyncStatus(c *gin.Context) {
	latest, err := h.repo.LatestSync(models.SyncTypeEnvelope)
	if err != nil {
		respondError(c, err)
		return
	}

	if latest == nil {
		c.JSON(http.StatusOK, gin.H{"last_sync": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"last_sync": toSyncLogResponse(latest)})
}

// GetSyncHistory returns a bounded list of recent sync attempts
func (h *Handlers) GetSyncHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	logs, err := h.repo.RecentSyncs(models.SyncTypeEnvelope, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.SyncLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, toSyncLogResponse(&logs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"history": responses})
}

// StartScheduler starts the periodic sync scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		writeError(c, http.StatusInternalServerError, "scheduler_error", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler started successfully",
		"status":  "running",
	})
}

// StopScheduler stops the periodic sync scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		writeError(c, http.StatusInternalServerError, "scheduler_error", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Scheduler stopped successfully",
		"status":  "stopped",
	})
}

// GetSchedulerStatus returns the current scheduler status
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := "stopped"
	if h.scheduler.IsRunning() {
		status = "running"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.scheduler.GetNextRun(),
		"last_run": h.scheduler.GetLastRun(),
	})
}

func toSyncLogResponse(log *models.SyncLog) models.SyncLogResponse {
	return models.SyncLogResponse{
		ID:              log.ID,
		SyncType:        log.SyncType,
		Date:            log.LastSyncDate,
		EnvelopesSynced: log.EnvelopesSynced,
		Status:          log.SyncStatus,
		ErrorMessage:    log.ErrorMessage,
		CreatedAt:       log.CreatedAt,
	}
}
