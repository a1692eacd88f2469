package handler

import (
	"net/http"

	"astro-checkout/internal/core/httpapi"
	"astro-checkout/internal/features/cart/domain"
	"astro-checkout/internal/features/cart/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CartHandler handles HTTP requests for the session cart.
type CartHandler struct {
	service ports.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{
		service: service,
	}
}

// Register mounts the cart routes on r.
func (h *CartHandler) Register(r fiber.Router) {
	r.Get("/cart", h.GetCart)
	r.Post("/cart/items", h.AddItem)
	r.Put("/cart/items/:productId", h.SetQuantity)
	r.Delete("/cart/items/:productId", h.RemoveItem)
	r.Post("/cart/promo", h.ApplyPromo)
	r.Delete("/cart/promo", h.ClearPromo)
	r.Post("/cart/refresh", h.Refresh)
}

// AddItemRequest represents the request body for adding units of a product.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	// UnitPrice must be positive when the product is not in the cart yet; an existing
	// line keeps its own price.
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"499.00"`
	// Delta is the number of units to add; negative values take units away.
	Delta   int             `json:"delta" validate:"required"`
	Variant *domain.Variant `json:"variant,omitempty"`
}

// SetQuantityRequest represents the request body for an absolute quantity change.
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

// ApplyPromoRequest represents the request body for applying a promo code.
type ApplyPromoRequest struct {
	Code string `json:"code" validate:"required"`
}

// GetCart handles GET /cart.
// @Summary Get the session cart
// @Description Returns the cart lines, applied discount and price breakdown.
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} ports.Snapshot
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.UserContext(), c.Get(httpapi.SessionHeader))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// AddItem handles POST /cart/items.
// @Summary Add or increment a cart line
// @Description Adds delta units of a product. A line driven to zero units is removed.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Param item body AddItemRequest true "Line change"
// @Success 200 {object} ports.Snapshot
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := httpapi.Bind(c, &req); err != nil {
		return httpapi.Error(c, err)
	}

	snap, err := h.service.AddOrIncrement(c.UserContext(), c.Get(httpapi.SessionHeader), ports.AddItemInput{
		ProductID: req.ProductID,
		UnitPrice: req.UnitPrice,
		Delta:     req.Delta,
		Variant:   req.Variant,
	})
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// SetQuantity handles PUT /cart/items/:productId.
// @Summary Set the quantity of a cart line
// @Description Sets an absolute quantity; zero removes the line.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Param productId path string true "Product ID"
// @Param quantity body SetQuantityRequest true "New quantity"
// @Success 200 {object} ports.Snapshot
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 404 {object} httpapi.ErrorResponse
// @Router /cart/items/{productId} [put]
func (h *CartHandler) SetQuantity(c *fiber.Ctx) error {
	var req SetQuantityRequest
	if err := httpapi.Bind(c, &req); err != nil {
		return httpapi.Error(c, err)
	}

	snap, err := h.service.SetQuantity(c.UserContext(), c.Get(httpapi.SessionHeader), c.Params("productId"), *req.Quantity)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// RemoveItem handles DELETE /cart/items/:productId.
// @Summary Remove a cart line
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Param productId path string true "Product ID"
// @Success 200 {object} ports.Snapshot
// @Failure 404 {object} httpapi.ErrorResponse
// @Router /cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	snap, err := h.service.Remove(c.UserContext(), c.Get(httpapi.SessionHeader), c.Params("productId"))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// ApplyPromo handles POST /cart/promo.
// @Summary Apply a promo code
// @Description Validates the code against the promo catalog. A rejection leaves the cart unchanged and reports the reason.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Param promo body ApplyPromoRequest true "Promo code"
// @Success 200 {object} ports.Snapshot
// @Failure 400 {object} httpapi.ErrorResponse
// @Failure 422 {object} httpapi.ErrorResponse "reason is not_found, expired or already_applied"
// @Router /cart/promo [post]
func (h *CartHandler) ApplyPromo(c *fiber.Ctx) error {
	var req ApplyPromoRequest
	if err := httpapi.Bind(c, &req); err != nil {
		return httpapi.Error(c, err)
	}

	snap, err := h.service.ApplyPromo(c.UserContext(), c.Get(httpapi.SessionHeader), req.Code)
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// ClearPromo handles DELETE /cart/promo.
// @Summary Clear the applied promo code
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} ports.Snapshot
// @Router /cart/promo [delete]
func (h *CartHandler) ClearPromo(c *fiber.Ctx) error {
	snap, err := h.service.ClearPromo(c.UserContext(), c.Get(httpapi.SessionHeader))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// Refresh handles POST /cart/refresh.
// @Summary Re-fetch the cart from the marketplace
// @Description Replaces the lines with the marketplace cart, picking up price changes.
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} ports.Snapshot
// @Failure 500 {object} httpapi.ErrorResponse
// @Router /cart/refresh [post]
func (h *CartHandler) Refresh(c *fiber.Ctx) error {
	snap, err := h.service.Reload(c.UserContext(), c.Get(httpapi.SessionHeader))
	if err != nil {
		return httpapi.Error(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}
