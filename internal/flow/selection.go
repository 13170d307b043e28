package flow

import (
	"airportride/internal/entities"
	apperrors "airportride/internal/errors"
)

// FilterByCapacity keeps the vehicles that seat the party and hold its luggage.
func FilterByCapacity(cars []entities.Vehicle, p entities.Party) []entities.Vehicle {
	luggage := p.Luggage.Count()
	out := make([]entities.Vehicle, 0, len(cars))
	for _, c := range cars {
		if c.Capacity.Passengers >= p.Passengers && c.Capacity.Luggage >= luggage {
			out = append(out, c)
		}
	}
	return out
}

// SelectVehicle returns d with car selected for trip type t and the fare locked. On error
// d is returned unchanged.
func SelectVehicle(d entities.BookingDraft, car entities.Vehicle, t entities.TripType) (entities.BookingDraft, error) {
	if !t.Valid() {
		return d, apperrors.FieldErrors{"tripType": "Trip type must be ONE_WAY or RETURN"}
	}
	if t == entities.TripReturn && !car.SupportsReturnTrip {
		return d, apperrors.ErrReturnTripUnsupported
	}
	if car.Capacity.Passengers < d.Passengers || car.Capacity.Luggage < d.Luggage.Count() {
		return d, apperrors.ErrCarUnavailable
	}
	// vehicles listed without their own fares fall back to the route quote
	if d.Pricing != nil {
		if car.Pricing.OneWayFare == 0 && car.Pricing.RoundTripFare == 0 {
			car.Pricing.OneWayFare = d.Pricing.OneWayFare
			car.Pricing.RoundTripFare = d.Pricing.RoundTripFare
		}
		if car.Pricing.DistanceMiles == 0 {
			car.Pricing.DistanceMiles = d.Pricing.DistanceMiles
		}
	}
	return d.WithSelection(car, t), nil
}

// FindVehicle looks a vehicle up by id.
func FindVehicle(cars []entities.Vehicle, id string) (entities.Vehicle, bool) {
	for _, c := range cars {
		if c.ID == id {
			return c, true
		}
	}
	return entities.Vehicle{}, false
}
