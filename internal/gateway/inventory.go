package gateway

import (
	"context"

	"airportride/internal/entities"
)

type carsRequest struct {
	FromPlaceID string `json:"fromPlaceId"`
	ToPlaceID   string `json:"toPlaceId"`
}

type carsResponse struct {
	Cars []entities.Vehicle `json:"cars"`
}

// ListCars calls POST /api/cars/public. The result is unfiltered.
func (c *Client) ListCars(ctx context.Context, fromPlaceID, toPlaceID string) ([]entities.Vehicle, error) {
	var resp carsResponse
	if err := c.postJSON(ctx, "inventory", "/api/cars/public", nil, carsRequest{FromPlaceID: fromPlaceID, ToPlaceID: toPlaceID}, &resp); err != nil {
		return nil, err
	}
	if resp.Cars == nil {
		return []entities.Vehicle{}, nil
	}
	return resp.Cars, nil
}
