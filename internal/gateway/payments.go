package gateway

import (
	"context"
	"errors"
)

type intentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type intentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent calls POST /api/payments/create-intent and returns the client secret.
// amount is in major units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64, currency string) (string, error) {
	var resp intentResponse
	if err := c.postJSON(ctx, "create intent", "/api/payments/create-intent", nil, intentRequest{Amount: amount, Currency: currency}, &resp); err != nil {
		return "", err
	}
	if resp.ClientSecret == "" {
		return "", errors.New("create intent: empty client secret")
	}
	return resp.ClientSecret, nil
}
