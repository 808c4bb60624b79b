package cancellation

import (
	"github.com/gin-gonic/gin"

	"github.com/UmarSidiki/taxibooking/pkg/common"
)

// Handler handles HTTP requests for booking cancellation
type Handler struct {
	service *Service
}

// NewHandler creates a new cancellation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterOperatorRoutes mounts the cancellation endpoint.
func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:id/cancel", h.Cancel)
}

// CancelRequest optionally overrides the refunded share of the total.
type CancelRequest struct {
	RefundPct *float64 `json:"refund_pct"`
}

// Cancel cancels a booking and refunds the captured payment
func (h *Handler) Cancel(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "id", "booking id")
	if !ok {
		return
	}

	var req CancelRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !common.BindJSON(c, &req) {
			return
		}
	}

	booking, err := h.service.Cancel(c.Request.Context(), bookingID, req.RefundPct)
	if common.HandleServiceError(c, err, "failed to cancel booking") {
		return
	}

	common.SuccessResponse(c, booking)
}
