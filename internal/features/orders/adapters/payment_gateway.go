package adapters

import (
	"context"
	"fmt"
	"net/http"

	"astro-checkout/internal/core/httpclient"
	"astro-checkout/internal/features/orders/ports"
)

// chargeCurrency is the only currency the marketplace settles in.
const chargeCurrency = "INR"

// HTTPPaymentGateway implements ports.PaymentGateway against the marketplace payments API.
type HTTPPaymentGateway struct {
	client *httpclient.JSONClient
}

// NewHTTPPaymentGateway creates a new HTTPPaymentGateway.
func NewHTTPPaymentGateway(client *httpclient.JSONClient) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{client: client}
}

type chargeRequest struct {
	PaymentMethodRef string `json:"payment_method_ref"`
	Amount           string `json:"amount"`
	Currency         string `json:"currency"`
	OrderID          string `json:"order_id"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Charge captures req.Amount. The order id doubles as the idempotency key.
func (g *HTTPPaymentGateway) Charge(ctx context.Context, req ports.ChargeRequest) (*ports.Charge, error) {
	body := chargeRequest{
		PaymentMethodRef: req.PaymentMethodRef,
		Amount:           req.Amount.StringFixed(2),
		Currency:         chargeCurrency,
		OrderID:          req.OrderID,
	}

	var resp chargeResponse
	if err := g.client.Do(ctx, http.MethodPost, "/payments/charges", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to charge order %s: %w", req.OrderID, err)
	}

	if resp.ID == "" || (resp.Status != "" && resp.Status != "succeeded") {
		return nil, fmt.Errorf("charge for order %s not captured: status %q", req.OrderID, resp.Status)
	}

	return &ports.Charge{ID: resp.ID}, nil
}
