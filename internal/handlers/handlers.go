package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/metrics"
	"docusign-envelope-sync/internal/models"
	"docusign-envelope-sync/internal/repository"
	"docusign-envelope-sync/internal/scheduler"
	"docusign-envelope-sync/internal/syncer"
	"docusign-envelope-sync/internal/webhook"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	repo       *repository.Repository
	syncer     *syncer.Syncer
	scheduler  *scheduler.Scheduler
	normalizer *webhook.Normalizer
	metrics    *metrics.Metrics
}

// NewHandlers creates new HTTP handlers
func NewHandlers(repo *repository.Repository, s *syncer.Syncer, sched *scheduler.Scheduler, n *webhook.Normalizer, m *metrics.Metrics) *Handlers {
	return &Handlers{repo: repo, syncer: s, scheduler: sched, normalizer: n, metrics: m}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// DocuSign Connect push notifications
	router.POST("/docusign/webhook", h.HandleWebhook)

	// API routes
	api := router.Group("/api/v1")
	{
		// Envelopes
		api.GET("/envelopes", h.ListEnvelopes)
		api.GET("/envelopes/stats", h.GetStats)
		api.GET("/envelopes/:id", h.GetEnvelope)

		// Sync
		api.POST("/sync/envelopes", h.TriggerSync)
		api.GET("/sync/status", h.GetSyncStatus)
		api.GET("/sync/history", h.GetSyncHistory)

		// Scheduler control
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// respondError maps the error taxonomy to HTTP responses
func respondError(c *gin.Context, err error) {
	var (
		validationErr *apperr.ValidationError
		authErr       *apperr.AuthenticationError
		parseErr      *apperr.ParseError
		providerErr   *apperr.ProviderError
		storageErr    *apperr.StorageError
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &validationErr):
		writeError(c, http.StatusBadRequest, "validation_error", validationErr.Msg)
	case errors.As(err, &parseErr):
		writeError(c, http.StatusBadRequest, "parse_error", parseErr.Error())
	case errors.As(err, &authErr):
		writeError(c, http.StatusUnauthorized, "authentication_error", authErr.Msg)
	case errors.As(err, &providerErr):
		writeError(c, http.StatusBadGateway, "provider_error", providerErr.Error())
	case errors.As(err, &storageErr):
		writeError(c, http.StatusInternalServerError, "database_error", storageErr.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeError(c *gin.Context, code int, kind, message string) {
	c.JSON(code, models.ErrorResponse{
		Error:   kind,
		Message: message,
		Code:    code,
	})
}
