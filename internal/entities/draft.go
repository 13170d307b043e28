package entities

type Route struct {
	FromLocation string `json:"fromLocation"`
	FromPlaceID  string `json:"fromPlaceId"`
	ToLocation   string `json:"toLocation"`
	ToPlaceID    string `json:"toPlaceId"`
	IsRoundTrip  bool   `json:"isRoundTrip"`
}

type ExtraLargeItemKind string

const (
	ExtraLargeNone       ExtraLargeItemKind = "none"
	ExtraLargeBag35kg    ExtraLargeItemKind = "extra_large_bag_35kg"
	ExtraLargeWheelchair ExtraLargeItemKind = "wheelchair"
	ExtraLargePram       ExtraLargeItemKind = "pram"
	ExtraLargeGolfBag    ExtraLargeItemKind = "golf_bag"
	ExtraLargeOther      ExtraLargeItemKind = "other"
)

func (k ExtraLargeItemKind) Valid() bool {
	switch k {
	case "", ExtraLargeNone, ExtraLargeBag35kg, ExtraLargeWheelchair, ExtraLargePram, ExtraLargeGolfBag, ExtraLargeOther:
		return true
	}
	return false
}

type Luggage struct {
	LargeBags          int                `json:"largeBags23kg"`
	SmallBags          int                `json:"smallBags15kg"`
	ExtraLargeItemType ExtraLargeItemKind `json:"extraLargeItemType,omitempty"`
	ExtraLargeItemNote string             `json:"extraLargeItemNote,omitempty"`
}

// Count is the number of luggage slots the party needs. An extra large item takes one slot.
func (l Luggage) Count() int {
	n := l.LargeBags + l.SmallBags
	if l.ExtraLargeItemType != "" && l.ExtraLargeItemType != ExtraLargeNone {
		n++
	}
	return n
}

type Party struct {
	Passengers int     `json:"passengers"`
	Luggage    Luggage `json:"luggage"`
}

type Schedule struct {
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`
	ReturnDate string `json:"returnDate,omitempty"`
	ReturnTime string `json:"returnTime,omitempty"`
}

type Flight struct {
	FlightNumber    string `json:"flightNumber"`
	ArrivingFrom    string `json:"arrivingFrom"`
	ArrivalDateTime string `json:"arrivalDateTime"`
	MeetAndGreet    bool   `json:"meetAndGreet"`
}

type PassengerInfo struct {
	FullName string `json:"fullName"`
	Mobile   string `json:"mobile"`
	Email    string `json:"email"`
	Flight   Flight `json:"flight"`
}

// BookingDraft is the booking being assembled across the flow steps. It is treated as a
// value: every With* method returns a new draft and leaves the receiver untouched.
type BookingDraft struct {
	Route
	Party
	Schedule
	Pricing      *Quote         `json:"pricing"`
	SelectedCar  *Vehicle       `json:"selectedCar,omitempty"`
	TripType     TripType       `json:"tripType,omitempty"`
	User         *PassengerInfo `json:"user,omitempty"`
	Step         FlowState      `json:"step"`
	Confirmation *Confirmation  `json:"confirmation,omitempty"`
}

// Clone returns a deep copy.
func (d BookingDraft) Clone() BookingDraft {
	c := d
	if d.Pricing != nil {
		q := d.Pricing.clone()
		c.Pricing = &q
	}
	if d.SelectedCar != nil {
		v := d.SelectedCar.clone()
		c.SelectedCar = &v
	}
	if d.User != nil {
		u := *d.User
		c.User = &u
	}
	if d.Confirmation != nil {
		cf := *d.Confirmation
		c.Confirmation = &cf
	}
	return c
}

// WithRoute sets the route step fields. A route that differs from the one the vehicle was
// chosen for drops the selection and its locked fare.
func (d BookingDraft) WithRoute(r Route, p Party, s Schedule) BookingDraft {
	c := d.Clone()
	if routeChanged(d, r, p) {
		c.SelectedCar = nil
		c.TripType = ""
		c.Pricing = nil
	}
	c.Route = r
	c.Party = p
	c.Schedule = s
	return c
}

// WithQuote attaches a route quote. A locked fare is never replaced.
func (d BookingDraft) WithQuote(q *Quote) BookingDraft {
	c := d.Clone()
	if d.Pricing.Locked() || q == nil {
		return c
	}
	cq := q.clone()
	cq.TotalFare = nil
	cq.Type = ""
	c.Pricing = &cq
	return c
}

// WithSelection stores the chosen vehicle and locks the fare for the trip type.
func (d BookingDraft) WithSelection(v Vehicle, t TripType) BookingDraft {
	c := d.Clone()
	car := v.clone()
	locked := v.Pricing.Lock(t)
	c.SelectedCar = &car
	c.TripType = t
	c.Pricing = &locked
	return c
}

// WithPassengerInfo sets the passenger details.
func (d BookingDraft) WithPassengerInfo(u PassengerInfo) BookingDraft {
	c := d.Clone()
	c.User = &u
	return c
}

// WithParty replaces the party without touching the selection.
func (d BookingDraft) WithParty(p Party) BookingDraft {
	c := d.Clone()
	c.Party = p
	return c
}

func (d BookingDraft) WithStep(s FlowState) BookingDraft {
	c := d.Clone()
	c.Step = s
	return c
}

func (d BookingDraft) WithConfirmation(cf Confirmation) BookingDraft {
	c := d.Clone()
	c.Confirmation = &cf
	return c
}

// LockedFare returns the fare fixed at vehicle selection.
func (d BookingDraft) LockedFare() (float64, bool) {
	if !d.Pricing.Locked() {
		return 0, false
	}
	return *d.Pricing.TotalFare, true
}

func routeChanged(d BookingDraft, r Route, p Party) bool {
	return d.FromPlaceID != r.FromPlaceID ||
		d.ToPlaceID != r.ToPlaceID ||
		d.IsRoundTrip != r.IsRoundTrip ||
		d.Passengers != p.Passengers ||
		d.Luggage.Count() != p.Luggage.Count()
}
