package api

import (
	"context"
	"net/http"

	"airportride/internal/auth"
	"airportride/internal/catalog"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
	"airportride/internal/service"

	"github.com/gorilla/mux"
)

type BookingFlow interface {
	Current(ctx context.Context, sessionID string) (service.FlowView, error)
	Enter(ctx context.Context, sessionID string, target entities.FlowState) (service.FlowView, error)
	SubmitRoute(ctx context.Context, sessionID string, form entities.RouteForm) (entities.BookingDraft, error)
	ListCars(ctx context.Context, sessionID string) ([]entities.Vehicle, error)
	SelectCar(ctx context.Context, sessionID string, form entities.CarSelectionForm) (entities.BookingDraft, error)
	SubmitPassengerInfo(ctx context.Context, sessionID string, form entities.PassengerForm) (entities.BookingDraft, error)
	Back(ctx context.Context, sessionID string) (service.FlowView, error)
	Restart(ctx context.Context, sessionID string) error
}

type Payer interface {
	Pay(ctx context.Context, sessionID string, form entities.PaymentForm) (entities.Confirmation, error)
}

type BookingHandler struct {
	flow     BookingFlow
	payments Payer
	airports []catalog.Airport
	public   PublicConfig
}

func NewBookingHandler(flow BookingFlow, payments Payer, airports []catalog.Airport, public PublicConfig) *BookingHandler {
	return &BookingHandler{flow: flow, payments: payments, airports: airports, public: public}
}

func sessionID(r *http.Request) (string, error) {
	sid, ok := auth.SessionID(r.Context())
	if !ok {
		return "", apperrors.ErrUnauthorized("No booking session")
	}
	return sid, nil
}

func viewResponse(v service.FlowView) BookingResponse {
	return BookingResponse{State: v.State, Redirect: v.Redirect, Draft: v.Draft}
}

func draftResponse(d entities.BookingDraft) BookingResponse {
	return BookingResponse{State: d.Step, Draft: &d}
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.flow.Current(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(v))
}

func (h *BookingHandler) EnterStep(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	target, ok := entities.ParseFlowState(mux.Vars(r)["state"])
	if !ok {
		writeError(w, r, apperrors.NewHTTPError(http.StatusNotFound, "Unknown step"))
		return
	}
	v, err := h.flow.Enter(r.Context(), sid, target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(v))
}

func (h *BookingHandler) SubmitRoute(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form entities.RouteForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.flow.SubmitRoute(r.Context(), sid, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(d))
}

func (h *BookingHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	cars, err := h.flow.ListCars(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CarsResponse{Cars: cars})
}

func (h *BookingHandler) SelectCar(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form entities.CarSelectionForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.flow.SelectCar(r.Context(), sid, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(d))
}

func (h *BookingHandler) SubmitPassenger(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form entities.PassengerForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.flow.SubmitPassengerInfo(r.Context(), sid, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(d))
}

func (h *BookingHandler) Pay(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var form entities.PaymentForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	cf, err := h.payments.Pay(r.Context(), sid, form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cf)
}

func (h *BookingHandler) Back(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := h.flow.Back(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse(v))
}

func (h *BookingHandler) Restart(w http.ResponseWriter, r *http.Request) {
	sid, err := sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.flow.Restart(r.Context(), sid); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingHandler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.public)
}

func (h *BookingHandler) Airports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"airports": h.airports})
}
