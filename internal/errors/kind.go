package errors

import (
	"context"
	"errors"
	"net/http"
)

// HTTPError is an error that carries its own response status.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string { return e.Message }

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func ErrUnauthorized(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }

func ErrBadRequest(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }

// Kind classifies err for API responses.
func Kind(err error) string {
	var (
		fe FieldErrors
		ge *GuardError
		pe *PaymentError
		gw *GatewayError
		he *HTTPError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &fe):
		return "validation"
	case errors.As(err, &ge):
		return "redirect"
	case errors.As(err, &pe):
		return "payment_failed"
	case errors.Is(err, ErrReturnTripUnsupported):
		return "return_trip_unsupported"
	case errors.Is(err, ErrCarUnavailable):
		return "car_unavailable"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrPaymentInProgress):
		return "payment_in_progress"
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, ErrReconciliationNotFound):
		return "not_found"
	case errors.As(err, &gw):
		return "gateway"
	case errors.As(err, &he):
		return "http"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	switch Kind(err) {
	case "":
		return http.StatusOK
	case "validation":
		return http.StatusUnprocessableEntity
	case "redirect", "invalid_transition", "return_trip_unsupported", "car_unavailable", "payment_in_progress":
		return http.StatusConflict
	case "payment_failed":
		return http.StatusPaymentRequired
	case "not_found":
		return http.StatusNotFound
	case "gateway":
		return http.StatusBadGateway
	case "timeout":
		return http.StatusGatewayTimeout
	case "canceled":
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
