package exotel

import (
	"net/http"

	"exotel-connector/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler exposes the reconciler to Exotel passthru applets.
//
// These routes are public: Exotel calls them without session credentials. All writes behind
// them go through the reconciler's elevated principal.
type WebhookHandler struct {
	Reconciler *Reconciler
}

func (h WebhookHandler) Register(r *gin.RouterGroup) {
	r.Match([]string{http.MethodGet, http.MethodPost}, "/incoming-call", h.HandleIncomingCall)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/end-call", h.HandleEndCall)
	r.Match([]string{http.MethodGet, http.MethodPost}, "/missed-call", h.HandleMissedCall)
}

func (h WebhookHandler) HandleIncomingCall(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	// Failures are already recorded in the error log; the provider still gets a 200.
	if err := h.Reconciler.HandleIncomingCall(c.Request.Context(), p); err != nil {
		_ = c.Error(err)
	}
	c.Status(http.StatusOK)
}

func (h WebhookHandler) HandleEndCall(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	if _, err := h.Reconciler.HandleEndCall(c.Request.Context(), p); err != nil {
		h.fail(c, "end call", err)
		return
	}
	c.Status(http.StatusOK)
}

func (h WebhookHandler) HandleMissedCall(c *gin.Context) {
	p, ok := h.payload(c)
	if !ok {
		return
	}
	if _, err := h.Reconciler.HandleMissedCall(c.Request.Context(), p); err != nil {
		h.fail(c, "missed call", err)
		return
	}
	c.Status(http.StatusOK)
}

func (h WebhookHandler) payload(c *gin.Context) (Payload, bool) {
	if h.Reconciler == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "exotel reconciler not configured"})
		return nil, false
	}
	p, err := ParsePayload(c.Request)
	if err != nil {
		logger.FromGin(c).Warn("exotel webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return nil, false
	}
	return p, true
}

func (h WebhookHandler) fail(c *gin.Context, what string, err error) {
	logger.FromGin(c).Error("exotel "+what+" failed", "err", err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": what + " failed"})
}
