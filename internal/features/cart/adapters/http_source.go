package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"astro-checkout/internal/core/httpclient"
	"astro-checkout/internal/features/cart/domain"
)

// HTTPCartSource implements ports.CartSource against the marketplace REST API.
type HTTPCartSource struct {
	client *httpclient.JSONClient
}

// NewHTTPCartSource creates a new HTTPCartSource.
func NewHTTPCartSource(client *httpclient.JSONClient) *HTTPCartSource {
	return &HTTPCartSource{client: client}
}

// cartPayload is the wire shape of GET /carts/{session}.
type cartPayload struct {
	Items []domain.LineItem `json:"items"`
}

// FetchCart returns the remote cart lines; a 404 is an empty cart.
func (s *HTTPCartSource) FetchCart(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	var payload cartPayload

	err := s.client.Do(ctx, http.MethodGet, "/carts/"+url.PathEscape(sessionID), nil, &payload)
	if httpclient.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart %s: %w", sessionID, err)
	}

	return payload.Items, nil
}
