package entities

type TripType string

const (
	TripOneWay TripType = "ONE_WAY"
	TripReturn TripType = "RETURN"
)

func (t TripType) Valid() bool {
	return t == TripOneWay || t == TripReturn
}

// Quote is the priced estimate for a route. Once a vehicle is chosen TotalFare and Type are
// set and the quote is locked.
type Quote struct {
	OneWayFare            float64  `json:"oneWayFare"`
	RoundTripFare         float64  `json:"roundTripFare"`
	OriginalOneWayFare    *float64 `json:"originalOneWayFare,omitempty"`
	OriginalRoundTripFare *float64 `json:"originalRoundTripFare,omitempty"`
	DistanceMiles         float64  `json:"distanceMiles"`
	TotalFare             *float64 `json:"totalFare,omitempty"`
	Type                  TripType `json:"type,omitempty"`
}

// Locked reports whether the fare was fixed at vehicle selection.
func (q *Quote) Locked() bool {
	return q != nil && q.TotalFare != nil
}

// FareFor returns the fare for the given trip type.
func (q Quote) FareFor(t TripType) float64 {
	if t == TripReturn {
		return q.RoundTripFare
	}
	return q.OneWayFare
}

// Lock returns a copy of q with the total fare fixed for trip type t.
func (q Quote) Lock(t TripType) Quote {
	locked := q.clone()
	total := q.FareFor(t)
	locked.TotalFare = &total
	locked.Type = t
	return locked
}

func (q Quote) clone() Quote {
	c := q
	c.OriginalOneWayFare = copyFloat(q.OriginalOneWayFare)
	c.OriginalRoundTripFare = copyFloat(q.OriginalRoundTripFare)
	c.TotalFare = copyFloat(q.TotalFare)
	return c
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
