package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"airportride/internal/catalog"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
	"airportride/internal/flow"
	"airportride/internal/gateway"
)

// DraftStore persists one booking draft per browser session.
type DraftStore interface {
	Load(ctx context.Context, sessionID string) (entities.BookingDraft, error)
	Save(ctx context.Context, sessionID string, d entities.BookingDraft) error
	Clear(ctx context.Context, sessionID string) error
}

type PricingGateway interface {
	Quote(ctx context.Context, r gateway.QuoteRequest) (*entities.Quote, error)
}

type InventoryGateway interface {
	ListCars(ctx context.Context, fromPlaceID, toPlaceID string) ([]entities.Vehicle, error)
}

type AirportCatalog interface {
	Lookup(placeID string) (catalog.Airport, bool)
}

// FlowView is the draft of a session together with the step the customer is on.
type FlowView struct {
	State    entities.FlowState     `json:"state"`
	Redirect bool                   `json:"redirect"`
	Draft    *entities.BookingDraft `json:"draft"`
}

type BookingService struct {
	drafts    DraftStore
	pricing   PricingGateway
	inventory InventoryGateway
	airports  AirportCatalog
	now       func() time.Time
}

func NewBookingService(drafts DraftStore, pricing PricingGateway, inventory InventoryGateway, airports AirportCatalog) *BookingService {
	return &BookingService{
		drafts:    drafts,
		pricing:   pricing,
		inventory: inventory,
		airports:  airports,
		now:       time.Now,
	}
}

// loadDraft returns nil when the session has no draft.
func (s *BookingService) loadDraft(ctx context.Context, sessionID string) (*entities.BookingDraft, error) {
	return loadDraft(ctx, s.drafts, sessionID)
}

func loadDraft(ctx context.Context, store DraftStore, sessionID string) (*entities.BookingDraft, error) {
	d, err := store.Load(ctx, sessionID)
	if errors.Is(err, apperrors.ErrDraftNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// requireState checks that d may enter target. A completed draft can only be viewed.
func requireState(target entities.FlowState, d *entities.BookingDraft) error {
	if d != nil && d.Step == entities.StateCompleted && target != entities.StateCompleted {
		return &apperrors.GuardError{Target: string(target), Redirect: string(entities.StateCompleted)}
	}
	return flow.Guard(target, d)
}

// advance moves d past the submitted step, following the flow's transition table.
func advance(d entities.BookingDraft, submitted entities.FlowState) (entities.BookingDraft, error) {
	next, ok := flow.Next(submitted)
	if !ok || !flow.CanTransition(submitted, next) {
		return entities.BookingDraft{}, fmt.Errorf("%w: no step after %s", apperrors.ErrInvalidTransition, submitted)
	}
	return d.WithStep(next), nil
}

// Current returns the session's draft and the step it resumes at.
func (s *BookingService) Current(ctx context.Context, sessionID string) (FlowView, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return FlowView{}, err
	}
	if d == nil {
		return FlowView{State: entities.StateRouteSelect}, nil
	}
	step := d.Step
	if step == "" {
		step = entities.StateRouteSelect
	}
	if step == entities.StateCompleted {
		return FlowView{State: step, Draft: d}, nil
	}
	return FlowView{State: flow.Resolve(step, d), Draft: d}, nil
}

// Enter checks whether the session may open target and says where to go instead.
func (s *BookingService) Enter(ctx context.Context, sessionID string, target entities.FlowState) (FlowView, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return FlowView{}, err
	}
	if err := requireState(target, d); err != nil {
		var ge *apperrors.GuardError
		if errors.As(err, &ge) {
			return FlowView{State: entities.FlowState(ge.Redirect), Redirect: true, Draft: d}, nil
		}
		return FlowView{}, err
	}
	return FlowView{State: target, Draft: d}, nil
}

// SubmitRoute records the route step and moves to vehicle selection. A pricing failure is
// logged and leaves the quote absent.
func (s *BookingService) SubmitRoute(ctx context.Context, sessionID string, form entities.RouteForm) (entities.BookingDraft, error) {
	existing, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	base := entities.BookingDraft{}
	if existing != nil && existing.Step != entities.StateCompleted {
		base = *existing
	}

	errs := apperrors.FieldErrors{}
	route := form.Route
	route.FromLocation = strings.TrimSpace(route.FromLocation)
	route.ToLocation = strings.TrimSpace(route.ToLocation)
	if form.FromType == "airport" {
		if a, ok := s.airports.Lookup(route.FromPlaceID); ok {
			route.FromLocation = a.Name
		} else {
			errs["fromPlaceId"] = "Please choose an airport from the list"
		}
	}

	next := base.WithRoute(route, form.Party, form.Schedule)
	for k, v := range flow.ValidateRoute(next, s.now()) {
		if _, set := errs[k]; !set {
			errs[k] = v
		}
	}
	if err := errs.Err(); err != nil {
		return entities.BookingDraft{}, err
	}

	q, err := s.pricing.Quote(ctx, gateway.QuoteRequest{
		FromPlaceID: next.FromPlaceID,
		ToPlaceID:   next.ToPlaceID,
		IsRoundTrip: next.IsRoundTrip,
	})
	if err != nil {
		log.Printf("[GATEWAY] pricing failed from=%s to=%s: %v", next.FromPlaceID, next.ToPlaceID, err)
	} else {
		next = next.WithQuote(q)
	}

	next, err = advance(next, entities.StateRouteSelect)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	if err := s.drafts.Save(ctx, sessionID, next); err != nil {
		return entities.BookingDraft{}, err
	}
	log.Printf("[FLOW] session=%s route submitted from=%s to=%s quoted=%t", sessionID, next.FromPlaceID, next.ToPlaceID, next.Pricing != nil)
	return next, nil
}

// ListCars returns the vehicles that fit the party. An inventory failure yields an empty list.
func (s *BookingService) ListCars(ctx context.Context, sessionID string) ([]entities.Vehicle, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireState(entities.StateCarSelect, d); err != nil {
		return nil, err
	}

	cars, err := s.inventory.ListCars(ctx, d.FromPlaceID, d.ToPlaceID)
	if err != nil {
		log.Printf("[GATEWAY] inventory failed session=%s: %v", sessionID, err)
		return []entities.Vehicle{}, nil
	}
	return flow.FilterByCapacity(cars, d.Party), nil
}

// SelectCar chooses a vehicle and locks the fare. The vehicle is looked up again so the
// fare comes from the inventory, not from the client.
func (s *BookingService) SelectCar(ctx context.Context, sessionID string, form entities.CarSelectionForm) (entities.BookingDraft, error) {
	if err := flow.ValidateCarSelection(form).Err(); err != nil {
		return entities.BookingDraft{}, err
	}
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	if err := requireState(entities.StateCarSelect, d); err != nil {
		return entities.BookingDraft{}, err
	}

	cars, err := s.inventory.ListCars(ctx, d.FromPlaceID, d.ToPlaceID)
	if err != nil {
		return entities.BookingDraft{}, fmt.Errorf("select car: %w", err)
	}
	car, ok := flow.FindVehicle(flow.FilterByCapacity(cars, d.Party), form.CarID)
	if !ok {
		return entities.BookingDraft{}, apperrors.ErrCarUnavailable
	}

	next, err := flow.SelectVehicle(*d, car, form.TripType)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	next, err = advance(next, entities.StateCarSelect)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	if err := s.drafts.Save(ctx, sessionID, next); err != nil {
		return entities.BookingDraft{}, err
	}
	fare, _ := next.LockedFare()
	log.Printf("[FLOW] session=%s car=%s trip=%s fare=%.2f locked", sessionID, car.ID, form.TripType, fare)
	return next, nil
}

// SubmitPassengerInfo records the passenger details and moves to payment.
func (s *BookingService) SubmitPassengerInfo(ctx context.Context, sessionID string, form entities.PassengerForm) (entities.BookingDraft, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	if err := requireState(entities.StatePassengerInfo, d); err != nil {
		return entities.BookingDraft{}, err
	}

	info := form.PassengerInfo
	info.FullName = strings.TrimSpace(info.FullName)
	info.Mobile = strings.TrimSpace(info.Mobile)
	info.Email = strings.TrimSpace(info.Email)

	next := d.WithPassengerInfo(info)
	if form.Passengers != nil || form.Luggage != nil {
		party := next.Party
		if form.Passengers != nil {
			party.Passengers = *form.Passengers
		}
		if form.Luggage != nil {
			party.Luggage = *form.Luggage
		}
		next = next.WithParty(party)
	}

	if err := flow.ValidatePassengerInfo(next).Err(); err != nil {
		return entities.BookingDraft{}, err
	}

	next, err = advance(next, entities.StatePassengerInfo)
	if err != nil {
		return entities.BookingDraft{}, err
	}
	if err := s.drafts.Save(ctx, sessionID, next); err != nil {
		return entities.BookingDraft{}, err
	}
	log.Printf("[FLOW] session=%s passenger info saved", sessionID)
	return next, nil
}

// Back moves one step back without clearing any data.
func (s *BookingService) Back(ctx context.Context, sessionID string) (FlowView, error) {
	d, err := s.loadDraft(ctx, sessionID)
	if err != nil {
		return FlowView{}, err
	}
	if d == nil {
		return FlowView{State: entities.StateRouteSelect}, nil
	}
	prev, ok := flow.Previous(d.Step)
	if !ok || !flow.CanTransition(d.Step, prev) {
		return FlowView{State: d.Step, Draft: d}, nil
	}
	next := d.WithStep(prev)
	if err := s.drafts.Save(ctx, sessionID, next); err != nil {
		return FlowView{}, err
	}
	return FlowView{State: prev, Draft: &next}, nil
}

// Restart drops the session's draft.
func (s *BookingService) Restart(ctx context.Context, sessionID string) error {
	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		return err
	}
	log.Printf("[FLOW] session=%s restarted", sessionID)
	return nil
}
