package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error    string            `json:"error"`
	Kind     string            `json:"kind,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// BookingResponse is the draft of a session and the step it is on.
type BookingResponse struct {
	State    entities.FlowState     `json:"state"`
	Redirect bool                   `json:"redirect,omitempty"`
	Draft    *entities.BookingDraft `json:"draft"`
}

type CarsResponse struct {
	Cars []entities.Vehicle `json:"cars"`
}

// PublicConfig holds the settings the frontend may see.
type PublicConfig struct {
	StripePublishableKey string `json:"stripePublishableKey"`
	GoogleMapsKey        string `json:"googleMapsKey"`
	Currency             string `json:"currency"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	resp := ErrorResponse{Kind: apperrors.Kind(err)}

	var (
		fe apperrors.FieldErrors
		ge *apperrors.GuardError
		pe *apperrors.PaymentError
		he *apperrors.HTTPError
	)
	switch {
	case errors.As(err, &fe):
		resp.Error = "Please correct the highlighted fields"
		resp.Errors = fe
	case errors.As(err, &ge):
		resp.Error = "This step is not available yet"
		resp.Redirect = ge.Redirect
	case errors.As(err, &pe):
		resp.Error = pe.Message
	case errors.As(err, &he):
		resp.Error = he.Message
	case status == http.StatusConflict, status == http.StatusNotFound:
		resp.Error = err.Error()
	case status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		resp.Error = "The booking service is unavailable, please try again shortly"
	default:
		resp.Error = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s request_id=%s: %v", r.Method, r.URL.Path, requestIDFrom(r.Context()), err)
	}
	writeJSON(w, status, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.ErrBadRequest("Invalid request body")
	}
	return nil
}
