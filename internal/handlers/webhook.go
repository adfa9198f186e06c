package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docusign-envelope-sync/internal/mapper"
)

// signatureHeader carries the Connect HMAC signature
const signatureHeader = "X-DocuSign-Signature-1"

// HandleWebhook accepts a DocuSign Connect status notification and
// upserts the envelope it describes. Delivery is at-least-once; the
// idempotent upsert makes duplicates harmless.
func (h *Handlers) HandleWebhook(c *gin.Context) {
	h.metrics.WebhooksReceived.Inc()

	body, err := c.GetRawData()
	if err != nil {
		h.metrics.WebhooksRejected.Inc()
		writeError(c, http.StatusBadRequest, "invalid_body", "failed to read request body")
		return
	}

	raw, err := h.normalizer.Normalize(c.GetHeader(signatureHeader), body)
	if err != nil {
		h.metrics.WebhooksRejected.Inc()
		logrus.Warnf("Rejected Connect notification: %v", err)
		respondError(c, err)
		return
	}

	norm, err := mapper.Map(*raw)
	if err != nil {
		h.metrics.WebhooksRejected.Inc()
		respondError(c, err)
		return
	}

	if err := h.repo.Upsert(norm); err != nil {
		respondError(c, err)
		return
	}

	logrus.Infof("Connect notification processed for envelope %s", norm.EnvelopeID)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
