package handler

import (
	"net/http"

	"astro-checkout/internal/core/httpapi"
	"astro-checkout/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking operations.
type TrackingHandler struct {
	trackingService ports.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// Register mounts the tracking route on r.
func (h *TrackingHandler) Register(r fiber.Router) {
	r.Get("/orders/:id/tracking", h.GetTimeline)
}

// GetTimeline godoc
// @Summary Get the delivery timeline of an order
// @Description Derives the tracking steps from the order's status history
// @Tags tracking
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Timeline
// @Failure 404 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /orders/{id}/tracking [get]
func (h *TrackingHandler) GetTimeline(c *fiber.Ctx) error {
	timeline, err := h.trackingService.GetTimeline(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(timeline)
}
