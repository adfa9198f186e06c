package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docusign-envelope-sync/internal/apperr"
	"docusign-envelope-sync/internal/models"
	"docusign-envelope-sync/internal/repository"
)

// ListEnvelopes returns envelopes with optional filters: status,
// app_status, deal, free-text q, and a date_field + from/to range
// (inclusive, day granularity).
func (h *Handlers) ListEnvelopes(c *gin.Context) {
	filter := repository.EnvelopeFilter{
		Status:    c.Query("status"),
		AppStatus: c.Query("app_status"),
		Deal:      c.Query("deal"),
		Search:    c.Query("q"),
		DateField: c.Query("date_field"),
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			respondError(c, apperr.Validation("invalid limit %q", limit))
			return
		}
		filter.Limit = n
	}

	fromStr, toStr := c.Query("from"), c.Query("to")
	if (fromStr != "" || toStr != "") && filter.DateField == "" {
		respondError(c, apperr.Validation("date_field is required when from/to is given"))
		return
	}
	if fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(c, apperr.Validation("invalid from date %q, expected YYYY-MM-DD", fromStr))
			return
		}
		filter.From = &from
	}
	if toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(c, apperr.Validation("invalid to date %q, expected YYYY-MM-DD", toStr))
			return
		}
		// Inclusive upper bound at day granularity
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	envelopes, err := h.repo.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.EnvelopeResponse, 0, len(envelopes))
	for i := range envelopes {
		responses = append(responses, toEnvelopeResponse(&envelopes[i], false))
	}

	c.JSON(http.StatusOK, responses)
}

// GetEnvelope returns one envelope with full recipient detail
func (h *Handlers) GetEnvelope(c *gin.Context) {
	env, err := h.repo.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEnvelopeResponse(env, true))
}

// GetStats returns aggregate envelope counts by status and app status
func (h *Handlers) GetStats(c *gin.Context) {
	stats, err := h.repo.Stats()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func toEnvelopeResponse(env *models.Envelope, withRecipients bool) models.EnvelopeResponse {
	resp := models.EnvelopeResponse{
		EnvelopeID:  env.ID,
		Subject:     env.Subject,
		DealName:    env.DealName,
		Status:      env.Status,
		AppStatus:   env.AppStatus,
		SenderEmail: env.SenderEmail,
		CreatedAt:   env.CreatedAt,
		SentAt:      env.SentAt,
		DeliveredAt: env.DeliveredAt,
		CompletedAt: env.CompletedAt,
		UpdatedAt:   env.UpdatedAt,
	}

	if withRecipients {
		resp.Recipients = make([]models.RecipientResponse, 0, len(env.Recipients))
		for _, r := range env.Recipients {
			resp.Recipients = append(resp.Recipients, models.RecipientResponse{
				Name:         r.Name,
				Email:        r.Email,
				Role:         r.Role,
				RoutingOrder: r.RoutingOrder,
				Status:       r.RecipientStatus,
			})
		}
	}

	return resp
}
