// Package catalog holds the airports offered as pickup points.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed airports.yaml
var defaultAirports []byte

type Airport struct {
	Name    string `yaml:"name" json:"name"`
	Code    string `yaml:"code" json:"code"`
	PlaceID string `yaml:"place_id" json:"placeId"`
}

type Catalog struct {
	airports []Airport
	byPlace  map[string]Airport
}

// Load reads the catalogue from path, or the built-in list when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultAirports
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read airports file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Airports []Airport `yaml:"airports"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse airports: %w", err)
	}

	c := &Catalog{byPlace: make(map[string]Airport, len(doc.Airports))}
	for _, a := range doc.Airports {
		a.PlaceID = strings.TrimSpace(a.PlaceID)
		if a.PlaceID == "" || a.Name == "" {
			return nil, fmt.Errorf("parse airports: entry %q needs name and place_id", a.Code)
		}
		if _, dup := c.byPlace[a.PlaceID]; dup {
			return nil, fmt.Errorf("parse airports: duplicate place_id %s", a.PlaceID)
		}
		c.byPlace[a.PlaceID] = a
		c.airports = append(c.airports, a)
	}
	return c, nil
}

func (c *Catalog) All() []Airport {
	return append([]Airport(nil), c.airports...)
}

func (c *Catalog) Lookup(placeID string) (Airport, bool) {
	a, ok := c.byPlace[placeID]
	return a, ok
}
