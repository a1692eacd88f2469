package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"astro-checkout/internal/core/httpclient"
	"astro-checkout/internal/features/promo/domain"

	"github.com/shopspring/decimal"
)

// HTTPCatalog implements ports.Catalog against the marketplace REST API.
type HTTPCatalog struct {
	client *httpclient.JSONClient
}

// NewHTTPCatalog creates a new HTTPCatalog.
func NewHTTPCatalog(client *httpclient.JSONClient) *HTTPCatalog {
	return &HTTPCatalog{client: client}
}

// promoPayload is the wire shape of GET /promos/{code}.
type promoPayload struct {
	Code        string          `json:"code"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Description string          `json:"description"`
}

// Lookup fetches a promo; a 404 means the code does not exist.
func (c *HTTPCatalog) Lookup(ctx context.Context, code string) (*domain.Entry, error) {
	var payload promoPayload

	err := c.client.Do(ctx, http.MethodGet, "/promos/"+url.PathEscape(code), nil, &payload)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch promo %s: %w", code, err)
	}

	return mapPromo(payload, code), nil
}

// mapPromo converts the marketplace payload into a catalog entry.
func mapPromo(p promoPayload, requested string) *domain.Entry {
	code := p.Code
	if code == "" {
		code = requested
	}

	kind := domain.DiscountKind(p.Type)
	if p.Type == "percent" {
		kind = domain.DiscountKindPercentage
	}

	return &domain.Entry{
		Code:        domain.NormalizeCode(code),
		Kind:        kind,
		Amount:      p.Value,
		ExpiresAt:   p.ValidUntil,
		Description: p.Description,
	}
}
