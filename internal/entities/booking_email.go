package entities

// BookingEmailData feeds the confirmation email template.
type BookingEmailData struct {
	CustomerName    string
	BookingCode     string
	VehicleName     string
	Pickup          string
	Dropoff         string
	TripLabel       string
	PickupFormatted string
	ReturnFormatted string
	FlightNumber    string
	MeetAndGreet    bool
	TotalFormatted  string
	Status          string
	CurrentYear     int
}
