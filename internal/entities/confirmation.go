package entities

type ConfirmationStatus string

const (
	ConfirmationConfirmed ConfirmationStatus = "confirmed"
	// ConfirmationPending means the payment succeeded but the booking API has not accepted
	// the booking yet; reconciliation retries it.
	ConfirmationPending ConfirmationStatus = "pending_confirmation"
)

type Confirmation struct {
	Reference       string             `json:"reference,omitempty"`
	Status          ConfirmationStatus `json:"status"`
	PaymentIntentID string             `json:"paymentIntentId"`
	Amount          float64            `json:"amount"`
	Currency        string             `json:"currency"`
	Message         string             `json:"message"`
}

// BookingNotice carries what the customer-facing notifications need about a finished booking.
type BookingNotice struct {
	Reference     string   `json:"reference"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerPhone string   `json:"customerPhone"`
	Pickup        string   `json:"pickup"`
	Dropoff       string   `json:"dropoff"`
	VehicleName   string   `json:"vehicleName"`
	TripType      TripType `json:"tripType"`
	PickupDate    string   `json:"pickupDate"`
	PickupTime    string   `json:"pickupTime"`
	ReturnDate    string   `json:"returnDate,omitempty"`
	ReturnTime    string   `json:"returnTime,omitempty"`
	FlightNumber  string   `json:"flightNumber,omitempty"`
	MeetAndGreet  bool     `json:"meetAndGreet"`
	Passengers    int      `json:"passengers"`
	Amount        float64  `json:"amount"`
	Currency      string   `json:"currency"`
}

// NoticeFromDraft builds the notice for a paid draft.
func NoticeFromDraft(d BookingDraft, amount float64, currency string) BookingNotice {
	n := BookingNotice{
		Pickup:     d.FromLocation,
		Dropoff:    d.ToLocation,
		TripType:   d.TripType,
		PickupDate: d.PickupDate,
		PickupTime: d.PickupTime,
		ReturnDate: d.ReturnDate,
		ReturnTime: d.ReturnTime,
		Passengers: d.Passengers,
		Amount:     amount,
		Currency:   currency,
	}
	if d.SelectedCar != nil {
		n.VehicleName = d.SelectedCar.Name
	}
	if d.User != nil {
		n.CustomerName = d.User.FullName
		n.CustomerEmail = d.User.Email
		n.CustomerPhone = d.User.Mobile
		n.FlightNumber = d.User.Flight.FlightNumber
		n.MeetAndGreet = d.User.Flight.MeetAndGreet
	}
	return n
}
