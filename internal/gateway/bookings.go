package gateway

import (
	"context"
)

// BookingRequest is the body of POST /api/bookings.
type BookingRequest struct {
	CustomerName    string  `json:"customerName"`
	CustomerEmail   string  `json:"customerEmail"`
	CustomerPhone   string  `json:"customerPhone"`
	PickupLocation  string  `json:"pickupLocation"`
	DropoffLocation string  `json:"dropoffLocation"`
	CarID           string  `json:"carId"`
	DistanceMiles   float64 `json:"distanceMiles"`
	IsReturnTrip    bool    `json:"isReturnTrip"`
}

// BookingConfirmation is what the booking API answers. Only the identifying fields are kept.
type BookingConfirmation struct {
	ID               string `json:"id"`
	DocumentID       string `json:"_id"`
	BookingReference string `json:"bookingReference"`
	Status           string `json:"status"`
	Booking          *struct {
		ID               string `json:"_id"`
		BookingReference string `json:"bookingReference"`
	} `json:"booking,omitempty"`
}

// Reference returns the most specific identifier the API gave back.
func (b BookingConfirmation) Reference() string {
	if b.BookingReference != "" {
		return b.BookingReference
	}
	if b.Booking != nil {
		if b.Booking.BookingReference != "" {
			return b.Booking.BookingReference
		}
		if b.Booking.ID != "" {
			return b.Booking.ID
		}
	}
	if b.ID != "" {
		return b.ID
	}
	return b.DocumentID
}

// CreateBooking calls POST /api/bookings. idempotencyKey is sent as Idempotency-Key so a
// retried booking is not created twice.
func (c *Client) CreateBooking(ctx context.Context, r BookingRequest, idempotencyKey string) (BookingConfirmation, error) {
	var headers map[string]string
	if idempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	var resp BookingConfirmation
	if err := c.postJSON(ctx, "create booking", "/api/bookings", headers, r, &resp); err != nil {
		return BookingConfirmation{}, err
	}
	return resp, nil
}
