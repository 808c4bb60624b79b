package pricing

import (
	"github.com/gin-gonic/gin"

	"github.com/UmarSidiki/taxibooking/pkg/common"
)

// Handler handles HTTP requests for fare quotes
type Handler struct {
	service *Service
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the pricing endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes", h.CreateQuote)
	rg.GET("/vehicles", h.ListVehicles)
}

// CreateQuote computes a fare quote for a trip and vehicle
func (h *Handler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if !common.BindJSON(c, &req) {
		return
	}

	quote, err := h.service.Quote(c.Request.Context(), req)
	if common.HandleServiceError(c, err, "failed to compute quote") {
		return
	}

	common.SuccessResponse(c, quote)
}

// ListVehicles returns all bookable vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.service.ListVehicles(c.Request.Context())
	if common.HandleServiceError(c, err, "failed to list vehicles") {
		return
	}

	common.SuccessResponse(c, vehicles)
}
