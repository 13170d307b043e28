package entities

// RouteForm is the input of the route step.
type RouteForm struct {
	Route
	Party
	Schedule
	FromType string `json:"fromType"` // "airport" or "custom"
}

// PassengerForm is the input of the passenger info step. Passengers and Luggage are
// optional edits of the party chosen on the route step.
type PassengerForm struct {
	PassengerInfo
	Passengers *int     `json:"passengers,omitempty"`
	Luggage    *Luggage `json:"luggage,omitempty"`
}

type CarSelectionForm struct {
	CarID    string   `json:"carId"`
	TripType TripType `json:"tripType"`
}

type PaymentForm struct {
	PaymentMethodID string `json:"paymentMethodId"`
}
