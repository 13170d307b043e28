package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"airportride/internal/catalog"
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

var fixedNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func routeForm() entities.RouteForm {
	return entities.RouteForm{
		Route: entities.Route{
			FromPlaceID: "A",
			ToPlaceID:   "B",
			ToLocation:  "Oxford",
			IsRoundTrip: false,
		},
		Party:    entities.Party{Passengers: 2, Luggage: entities.Luggage{LargeBags: 1}},
		Schedule: entities.Schedule{PickupDate: "2026-11-01", PickupTime: "10:00"},
		FromType: "airport",
	}
}

func testCars() []entities.Vehicle {
	return []entities.Vehicle{
		{ID: "saloon", Name: "Saloon", Capacity: entities.Capacity{Passengers: 4, Luggage: 2}, Pricing: entities.Quote{OneWayFare: 45, RoundTripFare: 85, DistanceMiles: 20}},
		{ID: "mini", Name: "Mini", Capacity: entities.Capacity{Passengers: 1, Luggage: 1}, Pricing: entities.Quote{OneWayFare: 20}},
		{ID: "mpv", Name: "MPV", Capacity: entities.Capacity{Passengers: 6, Luggage: 6}, SupportsReturnTrip: true, Pricing: entities.Quote{OneWayFare: 70, RoundTripFare: 130}},
	}
}

func newBookingService(pricing *stubPricing, inventory *stubInventory) (*BookingService, DraftStore) {
	store := newTestStore()
	airports := stubAirports{"A": catalog.Airport{Name: "Heathrow (LHR)", Code: "LHR", PlaceID: "A"}}
	svc := NewBookingService(store, pricing, inventory, airports)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func TestRouteThenCarLocksFare(t *testing.T) {
	ctx := context.Background()
	svc, store := newBookingService(&stubPricing{quote: &entities.Quote{OneWayFare: 40, RoundTripFare: 75, DistanceMiles: 20}}, &stubInventory{cars: testCars()})

	d, err := svc.SubmitRoute(ctx, "sid", routeForm())
	if err != nil {
		t.Fatalf("submit route: %v", err)
	}
	if d.Step != entities.StateCarSelect || d.FromLocation != "Heathrow (LHR)" {
		t.Fatalf("unexpected draft %+v", d)
	}
	if d.Pricing == nil || d.Pricing.OneWayFare != 40 {
		t.Fatalf("quote not attached: %+v", d.Pricing)
	}

	d, err = svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripOneWay})
	if err != nil {
		t.Fatalf("select car: %v", err)
	}
	if d.Pricing.TotalFare == nil || *d.Pricing.TotalFare != 45 || d.Pricing.Type != entities.TripOneWay {
		t.Fatalf("fare not locked: %+v", d.Pricing)
	}

	stored, err := store.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fare, ok := stored.LockedFare(); !ok || fare != 45 || stored.Step != entities.StatePassengerInfo {
		t.Fatalf("stored draft %+v", stored)
	}
}

func TestSubmitRoutePricingFailureStillAdvances(t *testing.T) {
	svc, _ := newBookingService(&stubPricing{err: errors.New("connection refused")}, &stubInventory{})
	d, err := svc.SubmitRoute(context.Background(), "sid", routeForm())
	if err != nil {
		t.Fatalf("pricing failure must not block: %v", err)
	}
	if d.Pricing != nil || d.Step != entities.StateCarSelect {
		t.Fatalf("unexpected draft %+v", d)
	}
}

func TestSubmitRouteValidation(t *testing.T) {
	pricing := &stubPricing{}
	svc, store := newBookingService(pricing, &stubInventory{})

	form := routeForm()
	form.FromPlaceID = "unknown-airport"
	form.PickupDate = ""
	_, err := svc.SubmitRoute(context.Background(), "sid", form)

	var fe apperrors.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fe["fromPlaceId"]; !ok {
		t.Fatalf("expected airport error, got %v", fe)
	}
	if _, ok := fe["pickupDate"]; !ok {
		t.Fatalf("expected pickupDate error, got %v", fe)
	}
	if pricing.calls != 0 {
		t.Fatal("pricing must not be called for an invalid route")
	}
	if _, err := store.Load(context.Background(), "sid"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatal("invalid route must not be saved")
	}
}

func TestListCarsFiltersAndDegrades(t *testing.T) {
	ctx := context.Background()
	inv := &stubInventory{cars: testCars()}
	svc, _ := newBookingService(&stubPricing{}, inv)

	if _, err := svc.ListCars(ctx, "sid"); err == nil {
		t.Fatal("expected guard error without a draft")
	}

	if _, err := svc.SubmitRoute(ctx, "sid", routeForm()); err != nil {
		t.Fatalf("submit route: %v", err)
	}
	cars, err := svc.ListCars(ctx, "sid")
	if err != nil {
		t.Fatalf("list cars: %v", err)
	}
	if len(cars) != 2 || cars[0].ID != "saloon" || cars[1].ID != "mpv" {
		t.Fatalf("unexpected cars %+v", cars)
	}

	inv.err = errors.New("timeout")
	cars, err = svc.ListCars(ctx, "sid")
	if err != nil || len(cars) != 0 {
		t.Fatalf("inventory failure should give an empty list, got %v, %v", cars, err)
	}
}

func TestSelectCarRejectsReturnWithoutSupport(t *testing.T) {
	ctx := context.Background()
	svc, store := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())
	before, _ := store.Load(ctx, "sid")

	_, err := svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripReturn})
	if !errors.Is(err, apperrors.ErrReturnTripUnsupported) {
		t.Fatalf("expected ErrReturnTripUnsupported, got %v", err)
	}
	after, _ := store.Load(ctx, "sid")
	if after.SelectedCar != nil || after.TripType != before.TripType || after.Step != before.Step {
		t.Fatalf("draft changed on rejected selection: %+v", after)
	}
}

func TestSelectCarUnknownOrTooSmall(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())

	for _, id := range []string{"missing", "mini"} {
		if _, err := svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: id, TripType: entities.TripOneWay}); !errors.Is(err, apperrors.ErrCarUnavailable) {
			t.Fatalf("car %s: expected ErrCarUnavailable, got %v", id, err)
		}
	}
}

func TestPassengerInfoGuardAndLockedFare(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())

	_, err := svc.SubmitPassengerInfo(ctx, "sid", entities.PassengerForm{})
	var ge *apperrors.GuardError
	if !errors.As(err, &ge) || ge.Redirect != string(entities.StateCarSelect) {
		t.Fatalf("expected redirect to CAR_SELECT, got %v", err)
	}

	_, _ = svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripOneWay})

	_, err = svc.SubmitPassengerInfo(ctx, "sid", entities.PassengerForm{PassengerInfo: entities.PassengerInfo{FullName: "Jo", Email: "a@b"}})
	var fe apperrors.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fe["email"]; !ok {
		t.Fatalf("expected email error, got %v", fe)
	}

	d, err := svc.SubmitPassengerInfo(ctx, "sid", entities.PassengerForm{PassengerInfo: validInfo()})
	if err != nil {
		t.Fatalf("submit passenger info: %v", err)
	}
	if fare, _ := d.LockedFare(); fare != 45 || d.Step != entities.StatePayment {
		t.Fatalf("unexpected draft fare=%v step=%s", fare, d.Step)
	}
}

func TestPassengerInfoCapacityRecheck(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())
	_, _ = svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripOneWay})

	five := 5
	_, err := svc.SubmitPassengerInfo(ctx, "sid", entities.PassengerForm{PassengerInfo: validInfo(), Passengers: &five})
	var fe apperrors.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fe["passengers"]; !ok {
		t.Fatalf("expected passengers error, got %v", fe)
	}
}

func TestBackKeepsDataAndEnterRedirects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})

	view, err := svc.Enter(ctx, "sid", entities.StatePayment)
	if err != nil || !view.Redirect || view.State != entities.StateRouteSelect {
		t.Fatalf("missing draft should redirect to ROUTE_SELECT, got %+v, %v", view, err)
	}

	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())
	_, _ = svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripOneWay})

	view, err = svc.Back(ctx, "sid")
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if view.State != entities.StateCarSelect || view.Draft.SelectedCar == nil {
		t.Fatalf("back must keep the selection: %+v", view)
	}

	view, _ = svc.Enter(ctx, "sid", entities.StatePayment)
	if !view.Redirect || view.State != entities.StatePassengerInfo {
		t.Fatalf("payment without passenger info should redirect, got %+v", view)
	}

	view, _ = svc.Current(ctx, "sid")
	if view.State != entities.StateCarSelect {
		t.Fatalf("current state = %s", view.State)
	}
}

func TestRouteChangeAfterBackDropsSelection(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{cars: testCars()})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())
	_, _ = svc.SelectCar(ctx, "sid", entities.CarSelectionForm{CarID: "saloon", TripType: entities.TripOneWay})

	form := routeForm()
	form.ToPlaceID = "C"
	d, err := svc.SubmitRoute(ctx, "sid", form)
	if err != nil {
		t.Fatalf("submit route: %v", err)
	}
	if d.SelectedCar != nil || d.Pricing.Locked() {
		t.Fatalf("changed route must drop the selection: %+v", d)
	}
}

func TestRestartClearsDraft(t *testing.T) {
	ctx := context.Background()
	svc, store := newBookingService(&stubPricing{}, &stubInventory{})
	_, _ = svc.SubmitRoute(ctx, "sid", routeForm())
	if err := svc.Restart(ctx, "sid"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if _, err := store.Load(ctx, "sid"); !errors.Is(err, apperrors.ErrDraftNotFound) {
		t.Fatalf("expected cleared draft, got %v", err)
	}
}

func validInfo() entities.PassengerInfo {
	return entities.PassengerInfo{
		FullName: "Jo Bloggs",
		Mobile:   "+447700900000",
		Email:    "a@b.com",
		Flight: entities.Flight{
			FlightNumber:    "BA123",
			ArrivingFrom:    "Madrid",
			ArrivalDateTime: "2026-11-01T09:30",
		},
	}
}

func TestSubmitRouteCustomOriginNeedsAddress(t *testing.T) {
	svc, _ := newBookingService(&stubPricing{}, &stubInventory{})

	form := routeForm()
	form.FromType = "custom"
	form.FromPlaceID = "place-123"
	form.FromLocation = ""
	_, err := svc.SubmitRoute(context.Background(), "sid", form)

	var fe apperrors.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fe["fromLocation"]; !ok {
		t.Fatalf("expected fromLocation error, got %v", fe)
	}

	form.FromLocation = "12 Station Road"
	d, err := svc.SubmitRoute(context.Background(), "sid", form)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if d.FromLocation != "12 Station Road" {
		t.Fatalf("from location = %q", d.FromLocation)
	}
}

func TestAdvanceFollowsTransitionTable(t *testing.T) {
	cases := []struct {
		submitted entities.FlowState
		want      entities.FlowState
	}{
		{entities.StateRouteSelect, entities.StateCarSelect},
		{entities.StateCarSelect, entities.StatePassengerInfo},
		{entities.StatePassengerInfo, entities.StatePayment},
		{entities.StatePayment, entities.StateCompleted},
	}
	for _, tc := range cases {
		t.Run(string(tc.submitted), func(t *testing.T) {
			d, err := advance(entities.BookingDraft{Step: tc.submitted}, tc.submitted)
			if err != nil || d.Step != tc.want {
				t.Fatalf("advance(%s) = %s, %v; want %s", tc.submitted, d.Step, err, tc.want)
			}
		})
	}

	if _, err := advance(entities.BookingDraft{}, entities.StateCompleted); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition past COMPLETED, got %v", err)
	}
	if _, err := advance(entities.BookingDraft{}, entities.FlowState("BOGUS")); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown step, got %v", err)
	}
}
