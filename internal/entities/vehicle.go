package entities

import "encoding/json"

type Capacity struct {
	Passengers int `json:"passengers"`
	Luggage    int `json:"luggage"`
}

type Vehicle struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Capacity           Capacity `json:"capacity"`
	Features           []string `json:"features,omitempty"`
	SupportsReturnTrip bool     `json:"supportsReturnTrip"`
	Pricing            Quote    `json:"pricing"`
}

// UnmarshalJSON also accepts the inventory API's "_id" key.
func (v *Vehicle) UnmarshalJSON(b []byte) error {
	type plain Vehicle
	var raw struct {
		plain
		DocumentID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*v = Vehicle(raw.plain)
	if v.ID == "" {
		v.ID = raw.DocumentID
	}
	return nil
}

func (v Vehicle) clone() Vehicle {
	c := v
	c.Pricing = v.Pricing.clone()
	if v.Features != nil {
		c.Features = append([]string(nil), v.Features...)
	}
	return c
}
