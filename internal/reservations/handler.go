package reservations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/models"
	"github.com/UmarSidiki/taxibooking/pkg/pagination"
)

// Handler handles HTTP requests for reservations and bookings
type Handler struct {
	service *Service
}

// NewHandler creates a new reservations handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public checkout endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reservations", h.CreatePending)
	rg.PUT("/reservations/:orderID", h.UpdatePending)
	rg.POST("/bookings", h.CreateDirect)
	rg.GET("/bookings/trip/:tripID", h.GetByTripID)
}

// RegisterOperatorRoutes mounts the operator endpoints.
func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/complete", h.Complete)
}

// CreatePending starts a card checkout
func (h *Handler) CreatePending(c *gin.Context) {
	var req CreatePendingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.CreatePending(c.Request.Context(), req)
	if common.HandleServiceError(c, err, "failed to create reservation") {
		return
	}

	common.CreatedResponse(c, resp)
}

// UpdatePending reprices a provisional reservation
func (h *Handler) UpdatePending(c *gin.Context) {
	orderID, ok := common.ParseUUIDParam(c, "orderID", "order id")
	if !ok {
		return
	}

	var req UpdatePendingRequest
	if !common.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdatePending(c.Request.Context(), orderID, req)
	if common.HandleServiceError(c, err, "failed to update reservation") {
		return
	}

	common.SuccessResponse(c, resp)
}

// CreateDirect books with an offline payment method
func (h *Handler) CreateDirect(c *gin.Context) {
	var req CreateDirectRequest
	if !common.BindJSON(c, &req) {
		return
	}

	booking, err := h.service.CreateDirect(c.Request.Context(), req)
	if common.HandleServiceError(c, err, "failed to create booking") {
		return
	}

	common.CreatedResponse(c, booking)
}

// GetByTripID looks a booking up by its trip reference
func (h *Handler) GetByTripID(c *gin.Context) {
	tripID := c.Param("tripID")
	if tripID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "trip id is required")
		return
	}

	booking, err := h.service.GetBookingByTripID(c.Request.Context(), tripID)
	if common.HandleServiceError(c, err, "failed to load booking") {
		return
	}

	common.SuccessResponse(c, booking)
}

// GetBooking retrieves a booking by ID
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking id")
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to load booking") {
		return
	}

	common.SuccessResponse(c, booking)
}

// ListBookings returns bookings, newest first
func (h *Handler) ListBookings(c *gin.Context) {
	var status *models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := models.BookingStatus(raw)
		status = &s
	}

	page := pagination.ParseParams(c)

	bookings, err := h.service.ListBookings(c.Request.Context(), status, page.Limit, page.Offset)
	if common.HandleServiceError(c, err, "failed to list bookings") {
		return
	}

	common.SuccessResponse(c, bookings)
}

// Complete marks a booking as completed
func (h *Handler) Complete(c *gin.Context) {
	id, ok := common.ParseUUIDParam(c, "id", "booking id")
	if !ok {
		return
	}

	booking, err := h.service.Complete(c.Request.Context(), id)
	if common.HandleServiceError(c, err, "failed to complete booking") {
		return
	}

	common.SuccessResponse(c, booking)
}
