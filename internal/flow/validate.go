package flow

import (
	"regexp"
	"strings"
	"time"

	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ValidateRoute checks the route step. now is the caller's clock, pickup dates before its
// day are rejected.
func ValidateRoute(d entities.BookingDraft, now time.Time) apperrors.FieldErrors {
	errs := apperrors.FieldErrors{}

	if strings.TrimSpace(d.FromPlaceID) == "" {
		errs["fromPlaceId"] = "Pickup location is required"
	} else if strings.TrimSpace(d.FromLocation) == "" {
		errs["fromLocation"] = "Pickup address is required"
	}
	if strings.TrimSpace(d.ToPlaceID) == "" {
		errs["toPlaceId"] = "Drop-off location is required"
	}
	if strings.TrimSpace(d.ToLocation) == "" {
		errs["toLocation"] = "Drop-off address is required"
	}
	if d.Passengers < 1 {
		errs["passengers"] = "At least one passenger is required"
	}
	if d.Luggage.LargeBags < 0 || d.Luggage.SmallBags < 0 {
		errs["luggage"] = "Luggage counts cannot be negative"
	}
	if !d.Luggage.ExtraLargeItemType.Valid() {
		errs["extraLargeItemType"] = "Unknown extra large item"
	}

	pickup, ok := parseSchedule(errs, "pickupDate", "pickupTime", d.PickupDate, d.PickupTime, "Pickup")
	if ok {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if pickup.Before(today) {
			errs["pickupDate"] = "Pickup date cannot be in the past"
		}
	}

	if d.IsRoundTrip {
		ret, rok := parseSchedule(errs, "returnDate", "returnTime", d.ReturnDate, d.ReturnTime, "Return")
		if ok && rok && !ret.After(pickup) {
			errs["returnDate"] = "Return must be after pickup"
		}
	}
	return errs
}

func parseSchedule(errs apperrors.FieldErrors, dateKey, timeKey, date, clock, label string) (time.Time, bool) {
	valid := true
	if strings.TrimSpace(date) == "" {
		errs[dateKey] = label + " date is required"
		valid = false
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		errs[dateKey] = label + " date must be YYYY-MM-DD"
		valid = false
	}
	if strings.TrimSpace(clock) == "" {
		errs[timeKey] = label + " time is required"
		valid = false
	} else if _, err := time.Parse(timeLayout, clock); err != nil {
		errs[timeKey] = label + " time must be HH:MM"
		valid = false
	}
	if !valid {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout+" "+timeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidatePassengerInfo checks the passenger info step. When a vehicle is selected the
// party must still fit it.
func ValidatePassengerInfo(d entities.BookingDraft) apperrors.FieldErrors {
	errs := apperrors.FieldErrors{}

	var u entities.PassengerInfo
	if d.User != nil {
		u = *d.User
	}
	if strings.TrimSpace(u.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}
	if strings.TrimSpace(u.Mobile) == "" {
		errs["mobile"] = "Mobile number is required"
	}
	switch email := strings.TrimSpace(u.Email); {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Email is invalid"
	}
	if strings.TrimSpace(u.Flight.FlightNumber) == "" {
		errs["flightNumber"] = "Flight number is required"
	}
	if strings.TrimSpace(u.Flight.ArrivingFrom) == "" {
		errs["arrivingFrom"] = "Arriving from is required"
	}
	if strings.TrimSpace(u.Flight.ArrivalDateTime) == "" {
		errs["arrivalDateTime"] = "Arrival date and time is required"
	}
	if d.Luggage.ExtraLargeItemType == entities.ExtraLargeOther && strings.TrimSpace(d.Luggage.ExtraLargeItemNote) == "" {
		errs["extraLargeItemNote"] = "Please describe the item"
	}

	if d.SelectedCar != nil {
		if d.Passengers < 1 {
			errs["passengers"] = "At least one passenger is required"
		} else if d.Passengers > d.SelectedCar.Capacity.Passengers {
			errs["passengers"] = "Too many passengers for the selected vehicle"
		}
		if d.Luggage.Count() > d.SelectedCar.Capacity.Luggage {
			errs["luggage"] = "Too much luggage for the selected vehicle"
		}
	}
	return errs
}

func ValidateCarSelection(f entities.CarSelectionForm) apperrors.FieldErrors {
	errs := apperrors.FieldErrors{}
	if strings.TrimSpace(f.CarID) == "" {
		errs["carId"] = "Please choose a vehicle"
	}
	if !f.TripType.Valid() {
		errs["tripType"] = "Trip type must be ONE_WAY or RETURN"
	}
	return errs
}

func ValidatePayment(f entities.PaymentForm) apperrors.FieldErrors {
	errs := apperrors.FieldErrors{}
	if strings.TrimSpace(f.PaymentMethodID) == "" {
		errs["paymentMethodId"] = "Card details are required"
	}
	return errs
}
