package payments

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/logger"
)

// Handler handles the payment provider webhook
type Handler struct {
	reconciler    *Reconciler
	webhookSecret string
}

// NewHandler creates a new payments handler
func NewHandler(reconciler *Reconciler, webhookSecret string) *Handler {
	return &Handler{reconciler: reconciler, webhookSecret: webhookSecret}
}

// RegisterRoutes mounts the webhook endpoint. It stays outside the
// authenticated groups: Stripe authenticates with the signature header.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook verifies, parses and reconciles a provider event
func (h *Handler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "unable to read webhook payload")
		return
	}

	event, err := ParseWebhook(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		if errors.Is(err, ErrUnhandledEvent) {
			// Acknowledge event types we do not care about so the
			// provider stops redelivering them.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		logger.WarnContext(c.Request.Context(), "webhook rejected", zap.Error(err))
		common.ErrorResponse(c, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	if err := h.reconciler.Handle(c.Request.Context(), event); err != nil {
		logger.ErrorContext(c.Request.Context(), "webhook reconciliation failed", zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to handle webhook")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
