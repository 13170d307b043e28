package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDraftNotFound          = errors.New("booking draft not found")
	ErrReturnTripUnsupported  = errors.New("vehicle does not support return trips")
	ErrCarUnavailable         = errors.New("vehicle is not available for this booking")
	ErrInvalidTransition      = errors.New("invalid step transition")
	ErrPaymentNotCompleted    = errors.New("payment was not completed")
	ErrPaymentInProgress      = errors.New("a payment for this booking is already in progress")
	ErrReconciliationNotFound = errors.New("reconciliation not found")
)

// FieldErrors maps a form field to its error message. An empty map means valid.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns fe as an error, or nil when there is nothing to report.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// GuardError is returned when a step's prerequisites are missing. Redirect is the
// nearest earlier step whose prerequisites hold.
type GuardError struct {
	Target   string
	Redirect string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("cannot enter %s, redirect to %s", e.Target, e.Redirect)
}

// PaymentError carries the message shown to the customer next to the card form.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// GatewayError is a non-2xx answer from the remote booking API.
type GatewayError struct {
	Op     string
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}
