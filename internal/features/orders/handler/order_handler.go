package handler

import (
	"net/http"

	"astro-checkout/internal/core/httpapi"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests related to checkout and placed orders.
type OrderHandler struct {
	orders   ports.OrderService
	checkout ports.CheckoutService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(orders ports.OrderService, checkout ports.CheckoutService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		checkout: checkout,
	}
}

// Register mounts the checkout and order routes on r.
func (h *OrderHandler) Register(r fiber.Router) {
	r.Post("/checkout", h.Checkout)
	r.Get("/orders/:id", h.GetOrder)
	r.Post("/orders/:id/transitions", h.Transition)
	r.Post("/orders/:id/cancel", h.Cancel)
	r.Post("/orders/:id/sync", h.Sync)
}

// CheckoutRequest represents the request body for placing an order from the session cart.
type CheckoutRequest struct {
	ShippingAddress  domain.Address `json:"shipping_address" validate:"required"`
	PaymentMethodRef string         `json:"payment_method_ref" validate:"required"`
}

// TransitionRequest represents the request body for a status change.
type TransitionRequest struct {
	Status string `json:"status" validate:"required" example:"confirmed"`
}

// Checkout handles POST /checkout.
// @Summary Place an order
// @Description Charges the cart total, places the order with the marketplace and clears the cart.
// @Tags Orders
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Param checkout body CheckoutRequest true "Shipping and payment"
// @Success 201 {object} domain.Order
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /checkout [post]
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := httpapi.Bind(c, &req); err != nil {
		return httpapi.Error(c, err)
	}

	order, err := h.checkout.Checkout(c.UserContext(), ports.CheckoutInput{
		SessionID:        c.Get(httpapi.SessionHeader),
		ShippingAddress:  req.ShippingAddress,
		PaymentMethodRef: req.PaymentMethodRef,
	})
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// GetOrder handles GET /orders/:id.
// @Summary Get Order by ID
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} httpapi.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// Transition handles POST /orders/:id/transitions.
// @Summary Move an order to a new status
// @Description Applies one lifecycle transition and appends it to the history.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param transition body TransitionRequest true "Target status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 404 {object} httpapi.ErrorResponse
// @Failure 409 {object} httpapi.ErrorResponse "reason is invalid_transition or already_in_state"
// @Router /orders/{id}/transitions [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var req TransitionRequest
	if err := httpapi.Bind(c, &req); err != nil {
		return httpapi.Error(c, err)
	}

	order, err := h.orders.Transition(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// Cancel handles POST /orders/:id/cancel.
// @Summary Cancel an order
// @Description Cancels with the marketplace first, then locally. Only pending or confirmed orders can be cancelled.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} httpapi.ErrorResponse
// @Failure 409 {object} httpapi.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.orders.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// Sync handles POST /orders/:id/sync.
// @Summary Pull status changes from the marketplace
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 404 {object} httpapi.ErrorResponse
// @Failure 409 {object} httpapi.ErrorResponse
// @Router /orders/{id}/sync [post]
func (h *OrderHandler) Sync(c *fiber.Ctx) error {
	order, err := h.orders.Sync(c.UserContext(), c.Params("id"))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}
