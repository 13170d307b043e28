package flow

import (
	"testing"
	"time"

	"airportride/internal/entities"
)

func validPassengerDraft() entities.BookingDraft {
	return entities.BookingDraft{
		Party: entities.Party{Passengers: 2},
		User: &entities.PassengerInfo{
			FullName: "Jo Bloggs",
			Mobile:   "+447700900000",
			Email:    "a@b.com",
			Flight: entities.Flight{
				FlightNumber:    "BA123",
				ArrivingFrom:    "Madrid",
				ArrivalDateTime: "2026-11-02T10:30",
			},
		},
	}
}

func TestValidatePassengerInfoEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"a@b.com", true},
		{"a@b", false},
		{"", false},
		{"a b@c.com", false},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			d := validPassengerDraft()
			d.User.Email = tc.email
			errs := ValidatePassengerInfo(d)
			_, bad := errs["email"]
			if bad == tc.ok {
				t.Fatalf("email %q: errors=%v", tc.email, errs)
			}
		})
	}
}

func TestValidatePassengerInfoRequiredFields(t *testing.T) {
	if errs := ValidatePassengerInfo(validPassengerDraft()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	errs := ValidatePassengerInfo(entities.BookingDraft{})
	for _, k := range []string{"fullName", "mobile", "email", "flightNumber", "arrivingFrom", "arrivalDateTime"} {
		if _, ok := errs[k]; !ok {
			t.Fatalf("missing error for %s: %v", k, errs)
		}
	}

	d := validPassengerDraft()
	d.User.FullName = "   "
	if _, ok := ValidatePassengerInfo(d)["fullName"]; !ok {
		t.Fatal("blank name must be rejected")
	}
}

func TestValidatePassengerInfoExtraLargeNote(t *testing.T) {
	d := validPassengerDraft()
	d.Luggage.ExtraLargeItemType = entities.ExtraLargeOther
	if _, ok := ValidatePassengerInfo(d)["extraLargeItemNote"]; !ok {
		t.Fatal("expected note to be required for other")
	}
	d.Luggage.ExtraLargeItemNote = "surfboard"
	if errs := ValidatePassengerInfo(d); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	d.Luggage.ExtraLargeItemType = entities.ExtraLargePram
	d.Luggage.ExtraLargeItemNote = ""
	if errs := ValidatePassengerInfo(d); len(errs) != 0 {
		t.Fatalf("note only required for other, got %v", errs)
	}
}

func TestValidatePassengerInfoCapacity(t *testing.T) {
	d := validPassengerDraft()
	d.SelectedCar = &entities.Vehicle{ID: "c", Capacity: entities.Capacity{Passengers: 1, Luggage: 0}}
	d.Luggage.LargeBags = 1
	errs := ValidatePassengerInfo(d)
	if _, ok := errs["passengers"]; !ok {
		t.Fatalf("expected passengers error, got %v", errs)
	}
	if _, ok := errs["luggage"]; !ok {
		t.Fatalf("expected luggage error, got %v", errs)
	}
}

func TestValidateRoute(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	d := entities.BookingDraft{
		Route:    entities.Route{FromPlaceID: "A", FromLocation: "Station Road", ToPlaceID: "B", ToLocation: "Town"},
		Party:    entities.Party{Passengers: 1},
		Schedule: entities.Schedule{PickupDate: "2026-10-16", PickupTime: "09:00"},
	}
	if errs := ValidateRoute(d, now); len(errs) != 0 {
		t.Fatalf("expected valid route, got %v", errs)
	}

	noAddress := d
	noAddress.FromLocation = "  "
	if _, ok := ValidateRoute(noAddress, now)["fromLocation"]; !ok {
		t.Fatal("expected missing pickup address to be rejected")
	}

	past := d
	past.PickupDate = "2026-10-15"
	if _, ok := ValidateRoute(past, now)["pickupDate"]; !ok {
		t.Fatal("expected past pickup date to be rejected")
	}

	badTime := d
	badTime.PickupTime = "9am"
	if _, ok := ValidateRoute(badTime, now)["pickupTime"]; !ok {
		t.Fatal("expected malformed time to be rejected")
	}

	round := d
	round.IsRoundTrip = true
	errs := ValidateRoute(round, now)
	if _, ok := errs["returnDate"]; !ok {
		t.Fatalf("round trip needs a return date: %v", errs)
	}
	round.ReturnDate = "2026-10-16"
	round.ReturnTime = "08:00"
	if _, ok := ValidateRoute(round, now)["returnDate"]; !ok {
		t.Fatal("return before pickup must be rejected")
	}
	round.ReturnTime = "18:00"
	if errs := ValidateRoute(round, now); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}

	empty := ValidateRoute(entities.BookingDraft{}, now)
	for _, k := range []string{"fromPlaceId", "toPlaceId", "toLocation", "passengers", "pickupDate", "pickupTime"} {
		if _, ok := empty[k]; !ok {
			t.Fatalf("missing error for %s: %v", k, empty)
		}
	}
}

func TestValidateCarSelectionAndPayment(t *testing.T) {
	errs := ValidateCarSelection(entities.CarSelectionForm{TripType: "BOTH"})
	if len(errs) != 2 {
		t.Fatalf("expected carId and tripType errors, got %v", errs)
	}
	if errs := ValidateCarSelection(entities.CarSelectionForm{CarID: "x", TripType: entities.TripReturn}); len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if _, ok := ValidatePayment(entities.PaymentForm{})["paymentMethodId"]; !ok {
		t.Fatal("expected payment method to be required")
	}
}
