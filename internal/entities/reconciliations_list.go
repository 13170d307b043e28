package entities

import "time"

type ReconciliationResponse struct {
	ID               int64     `json:"id"`
	SessionID        string    `json:"session_id"`
	PaymentIntentID  string    `json:"payment_intent_id"`
	CustomerEmail    string    `json:"customer_email"`
	Amount           float64   `json:"amount"`
	Currency         string    `json:"currency"`
	Status           string    `json:"status"`
	Attempts         int       `json:"attempts"`
	LastError        string    `json:"last_error,omitempty"`
	BookingReference string    `json:"booking_reference,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ReconciliationsList struct {
	Total           int                      `json:"total"`
	Limit           int                      `json:"limit"`
	Reconciliations []ReconciliationResponse `json:"reconciliations"`
}
