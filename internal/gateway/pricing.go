package gateway

import (
	"context"

	"airportride/internal/entities"
)

type QuoteRequest struct {
	FromPlaceID string `json:"fromPlaceId"`
	ToPlaceID   string `json:"toPlaceId"`
	IsRoundTrip bool   `json:"isRoundTrip"`
}

// Quote calls POST /api/pricing/distance.
func (c *Client) Quote(ctx context.Context, r QuoteRequest) (*entities.Quote, error) {
	var q entities.Quote
	if err := c.postJSON(ctx, "pricing", "/api/pricing/distance", nil, r, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
