package db

import "time"

const (
	ReconciliationPending  = "pending"
	ReconciliationRetrying = "retrying"
	ReconciliationResolved = "resolved"
	ReconciliationRefunded = "refunded"
)

// Reconciliation is a paid booking the booking API has not accepted yet.
type Reconciliation struct {
	ID               int64
	SessionID        string
	PaymentIntentID  string
	BookingRequest   []byte // JSON body for POST /api/bookings
	Notice           []byte // JSON entities.BookingNotice
	CustomerEmail    string
	Amount           float64
	Currency         string
	Status           string
	Attempts         int
	LastError        string
	BookingReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
