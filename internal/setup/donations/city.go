// Package donations picks the donation spaces and city spaces blocked in games
// with fewer than four players.
package donations

import (
	"fmt"
	"strings"
)

type City uint8

const (
	// West
	Boise City = iota
	Denver
	LosAngeles
	Portland
	Reno
	SaltLakeCity
	SanFrancisco
	SantaFe
	// Midwest
	Chicago
	Cincinnati
	Duluth
	Fargo
	KansasCity
	Omaha
	StLouis
	StPaul
	// East
	Albany
	Boston
	NewYork
	Pittsburgh
	Washington
	// South
	Atlanta
	Charleston
	Dallas
	Houston
	Memphis
	NewOrleans
	SanAntonio

	NumCities = iota
)

type Region string

const (
	West    Region = "west"
	Midwest Region = "midwest"
	East    Region = "east"
	South   Region = "south"
)

type cityDef struct {
	name   string
	spaces int
	region Region
}

var cities = [NumCities]cityDef{
	Boise:        {"Boise", 1, West},
	Denver:       {"Denver", 3, West},
	LosAngeles:   {"Los Angeles", 3, West},
	Portland:     {"Portland", 1, West},
	Reno:         {"Reno", 1, West},
	SaltLakeCity: {"Salt Lake City", 1, West},
	SanFrancisco: {"San Francisco", 5, West},
	SantaFe:      {"Santa Fe", 1, West},
	Chicago:      {"Chicago", 5, Midwest},
	Cincinnati:   {"Cincinnati", 1, Midwest},
	Duluth:       {"Duluth", 1, Midwest},
	Fargo:        {"Fargo", 1, Midwest},
	KansasCity:   {"Kansas City", 3, Midwest},
	Omaha:        {"Omaha", 1, Midwest},
	StLouis:      {"St Louis", 3, Midwest},
	StPaul:       {"St Paul", 1, Midwest},
	Albany:       {"Albany", 3, East},
	Boston:       {"Boston", 3, East},
	NewYork:      {"New York", 5, East},
	Pittsburgh:   {"Pittsburgh", 3, East},
	Washington:   {"Washington", 3, East},
	Atlanta:      {"Atlanta", 3, South},
	Charleston:   {"Charleston", 1, South},
	Dallas:       {"Dallas", 1, South},
	Houston:      {"Houston", 3, South},
	Memphis:      {"Memphis", 1, South},
	NewOrleans:   {"New Orleans", 5, South},
	SanAntonio:   {"San Antonio", 1, South},
}

func (c City) Valid() bool { return c < NumCities }

func (c City) String() string {
	if !c.Valid() {
		return fmt.Sprintf("City(%d)", uint8(c))
	}
	return cities[c].name
}

// Spaces is the number of city spaces that can hold a blocking disk.
func (c City) Spaces() int { return cities[c].spaces }

func (c City) Region() Region { return cities[c].region }

// Cities lists every city in enumeration order.
func Cities() []City {
	out := make([]City, NumCities)
	for i := range out {
		out[i] = City(i)
	}
	return out
}

func ParseCity(s string) (City, error) {
	for i, d := range cities {
		if strings.EqualFold(d.name, s) {
			return City(i), nil
		}
	}
	return 0, fmt.Errorf("unknown city %q", s)
}

func (c City) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown city %d", uint8(c))
	}
	return []byte(cities[c].name), nil
}

func (c *City) UnmarshalText(b []byte) error {
	v, err := ParseCity(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
