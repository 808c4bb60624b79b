package dispatch

import (
	"github.com/gin-gonic/gin"

	"github.com/UmarSidiki/taxibooking/pkg/common"
)

// Handler handles HTTP requests for partner dispatch
type Handler struct {
	service *Service
}

// NewHandler creates a new dispatch handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPartnerRoutes mounts the partner-facing endpoints.
func (h *Handler) RegisterPartnerRoutes(rg *gin.RouterGroup) {
	rg.GET("/partners/:partnerID/rides", h.AvailableRides)
	rg.POST("/partners/:partnerID/rides/:bookingID/accept", h.Accept)
}

// RegisterOperatorRoutes mounts the operator endpoints.
func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.POST("/partners", h.CreatePartner)
	rg.GET("/partners", h.ListPartners)
	rg.POST("/partners/:partnerID/approve", h.ApprovePartner)
	rg.POST("/bookings/:bookingID/approve-review", h.ApproveReview)
}

// AvailableRides lists the rides currently offered to a partner
func (h *Handler) AvailableRides(c *gin.Context) {
	partnerID, ok := common.ParseUUIDParam(c, "partnerID", "partner id")
	if !ok {
		return
	}

	rides, err := h.service.AvailableRides(c.Request.Context(), partnerID)
	if common.HandleServiceError(c, err, "failed to list available rides") {
		return
	}

	common.SuccessResponse(c, rides)
}

// Accept assigns a ride to the first partner who claims it
func (h *Handler) Accept(c *gin.Context) {
	partnerID, ok := common.ParseUUIDParam(c, "partnerID", "partner id")
	if !ok {
		return
	}
	bookingID, ok := common.ParseUUIDParam(c, "bookingID", "booking id")
	if !ok {
		return
	}

	booking, err := h.service.Accept(c.Request.Context(), bookingID, partnerID)
	if common.HandleServiceError(c, err, "failed to accept ride") {
		return
	}

	common.SuccessResponse(c, booking)
}

// CreatePartner registers a fleet partner
func (h *Handler) CreatePartner(c *gin.Context) {
	var req CreatePartnerRequest
	if !common.BindJSON(c, &req) {
		return
	}

	partner, err := h.service.CreatePartner(c.Request.Context(), req)
	if common.HandleServiceError(c, err, "failed to create partner") {
		return
	}

	common.CreatedResponse(c, partner)
}

// ListPartners returns all fleet partners
func (h *Handler) ListPartners(c *gin.Context) {
	partners, err := h.service.ListPartners(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list partners") {
		return
	}

	common.SuccessResponse(c, partners)
}

// ApprovePartner marks a partner as approved to accept rides
func (h *Handler) ApprovePartner(c *gin.Context) {
	partnerID, ok := common.ParseUUIDParam(c, "partnerID", "partner id")
	if !ok {
		return
	}

	partner, err := h.service.ApprovePartner(c.Request.Context(), partnerID)
	if common.HandleServiceError(c, err, "failed to approve partner") {
		return
	}

	common.SuccessResponse(c, partner)
}

// ApproveReview releases a booking held for operator review
func (h *Handler) ApproveReview(c *gin.Context) {
	bookingID, ok := common.ParseUUIDParam(c, "bookingID", "booking id")
	if !ok {
		return
	}

	booking, err := h.service.ApproveReview(c.Request.Context(), bookingID)
	if common.HandleServiceError(c, err, "failed to approve booking review") {
		return
	}

	common.SuccessResponse(c, booking)
}
