package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"astro-checkout/internal/core/httpclient"
	cartdomain "astro-checkout/internal/features/cart/domain"
	"astro-checkout/internal/features/orders/domain"
	"astro-checkout/internal/features/orders/ports"
	pricingdomain "astro-checkout/internal/features/pricing/domain"
)

// MarketplaceGateway implements ports.OrderGateway using the marketplace REST API.
type MarketplaceGateway struct {
	client *httpclient.JSONClient
}

// NewMarketplaceGateway creates a new MarketplaceGateway.
func NewMarketplaceGateway(client *httpclient.JSONClient) *MarketplaceGateway {
	return &MarketplaceGateway{client: client}
}

// PlaceOrder submits the frozen order and maps the marketplace's record back.
func (g *MarketplaceGateway) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	var resp marketplaceOrder
	if err := g.client.Do(ctx, http.MethodPost, "/orders", toMarketplace(order), &resp); err != nil {
		return nil, fmt.Errorf("failed to place order %s: %w", order.ID, err)
	}

	placed, err := resp.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to map placed order %s: %w", order.ID, err)
	}
	return placed, nil
}

// FetchOrderStatus fetches the status and history of an order.
func (g *MarketplaceGateway) FetchOrderStatus(ctx context.Context, orderID string) (*ports.RemoteStatus, error) {
	var resp marketplaceStatus
	err := g.client.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID)+"/status", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status of order %s: %w", orderID, err)
	}

	status, err := mapStatus(resp.Status)
	if err != nil {
		return nil, err
	}
	history, err := mapHistory(resp.StatusHistory)
	if err != nil {
		return nil, err
	}

	return &ports.RemoteStatus{Status: status, StatusHistory: history}, nil
}

// CancelOrderRemote asks the marketplace to cancel an order.
func (g *MarketplaceGateway) CancelOrderRemote(ctx context.Context, orderID string) error {
	if err := g.client.Do(ctx, http.MethodPost, "/orders/"+url.PathEscape(orderID)+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}
	return nil
}

// HealthCheck verifies that the marketplace API is reachable and credentials are valid.
func (g *MarketplaceGateway) HealthCheck(ctx context.Context) error {
	// Check orders endpoint with per_page=1 to verify auth and reachability
	if err := g.client.Do(ctx, http.MethodGet, "/orders?per_page=1", nil, nil); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// mapStatus converts a marketplace status into the domain OrderStatus.
func mapStatus(status string) (domain.OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending", "on-hold", "placed":
		return domain.OrderStatusPending, nil
	case "confirmed", "processing":
		return domain.OrderStatusConfirmed, nil
	case "shipped", "in-transit", "dispatched":
		return domain.OrderStatusShipped, nil
	case "delivered", "completed":
		return domain.OrderStatusDelivered, nil
	case "cancelled", "canceled", "refunded", "failed":
		return domain.OrderStatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown marketplace order status %q", status)
	}
}

func mapHistory(changes []marketplaceStatusChange) ([]domain.StatusChange, error) {
	history := make([]domain.StatusChange, 0, len(changes))
	for _, c := range changes {
		status, err := mapStatus(c.Status)
		if err != nil {
			return nil, err
		}
		history = append(history, domain.StatusChange{Status: status, At: c.Date})
	}
	return history, nil
}

func toMarketplace(o *domain.Order) marketplaceOrder {
	lines := make([]marketplaceLineItem, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, marketplaceLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Variant:   item.Variant,
		})
	}

	history := make([]marketplaceStatusChange, 0, len(o.StatusHistory))
	for _, c := range o.StatusHistory {
		history = append(history, marketplaceStatusChange{Status: string(c.Status), Date: c.At})
	}

	return marketplaceOrder{
		ID:               o.ID,
		Status:           string(o.Status),
		DateCreated:      o.PlacedAt,
		LineItems:        lines,
		Totals:           o.Breakdown,
		Shipping:         o.ShippingAddress,
		PaymentMethodRef: o.PaymentMethodRef,
		ChargeID:         o.ChargeID,
		StatusHistory:    history,
	}
}

// toDomain converts the marketplace's record into a domain Order.
func (m marketplaceOrder) toDomain() (*domain.Order, error) {
	status, err := mapStatus(m.Status)
	if err != nil {
		return nil, err
	}
	history, err := mapHistory(m.StatusHistory)
	if err != nil {
		return nil, err
	}

	items := make([]cartdomain.LineItem, 0, len(m.LineItems))
	for _, line := range m.LineItems {
		item, err := line.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return &domain.Order{
		ID:               m.ID,
		PlacedAt:         m.DateCreated,
		Items:            items,
		Breakdown:        m.Totals,
		ShippingAddress:  m.Shipping,
		PaymentMethodRef: m.PaymentMethodRef,
		ChargeID:         m.ChargeID,
		Status:           status,
		StatusHistory:    history,
	}, nil
}

// internal structs for mapping

// marketplaceOrder represents the JSON structure of an order in the marketplace API.
type marketplaceOrder struct {
	ID               string                    `json:"id"`
	Status           string                    `json:"status"`
	DateCreated      time.Time                 `json:"date_created"`
	LineItems        []marketplaceLineItem     `json:"line_items"`
	Totals           pricingdomain.Breakdown   `json:"totals"`
	Shipping         domain.Address            `json:"shipping"`
	PaymentMethodRef string                    `json:"payment_method_ref"`
	ChargeID         string                    `json:"charge_id,omitempty"`
	StatusHistory    []marketplaceStatusChange `json:"status_history"`
}

// marketplaceLineItem carries money as a fixed two-decimal string.
type marketplaceLineItem struct {
	ProductID string              `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	UnitPrice string              `json:"unit_price"`
	Variant   *cartdomain.Variant `json:"variant,omitempty"`
}

func (l marketplaceLineItem) toDomain() (cartdomain.LineItem, error) {
	item := cartdomain.LineItem{ProductID: l.ProductID, Quantity: l.Quantity, Variant: l.Variant}
	if err := item.UnitPrice.UnmarshalText([]byte(l.UnitPrice)); err != nil {
		return item, fmt.Errorf("invalid unit price %q for %s: %w", l.UnitPrice, l.ProductID, err)
	}
	return item, nil
}

// marketplaceStatus is the JSON structure of GET /orders/{id}/status.
type marketplaceStatus struct {
	Status        string                    `json:"status"`
	StatusHistory []marketplaceStatusChange `json:"status_history"`
}

// marketplaceStatusChange is one entry of the marketplace status history.
type marketplaceStatusChange struct {
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
}
