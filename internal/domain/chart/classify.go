package chart

import (
	"fmt"
	"math"
)

// Position is what the ephemeris collaborator reports for one body.
type Position struct {
	Body Body
	Sign Sign
	Lon  float64 // ecliptic longitude in degrees
}

// Chart is a computed sky snapshot. HouseOf reports false when no house
// can be determined for lon, for instance when the cusps are degenerate.
type Chart interface {
	Get(b Body) (Position, error)
	HouseOf(lon float64) (int, bool)
}

// Placement is the categorical summary of a single body.
type Placement struct {
	Sign   Sign
	House  int // 1..12, or 0 when undeterminable
	Degree float64
}

// HasHouse reports whether a house was determined.
func (p Placement) HasHouse() bool { return p.House > 0 }

// Summary is the classified chart.
type Summary struct {
	Bodies         []Body // requested order
	Planets        map[Body]Placement
	HousePlanets   map[int][]Body
	ElementBalance map[Element]int
	Dominant       Element

	SunSign       Sign
	MoonSign      Sign
	AscSign       Sign
	NorthNodeSign Sign

	// HouseMisses counts bodies whose house could not be determined.
	HouseMisses int
}

// Classify summarizes ch for the requested bodies. A body the chart cannot
// produce fails the whole classification; a missing house only affects that
// body's house fields.
func Classify(ch Chart, bodies []Body) (Summary, error) {
	if ch == nil {
		return Summary{}, ErrNilChart
	}
	s := Summary{
		Bodies:         append([]Body(nil), bodies...),
		Planets:        make(map[Body]Placement, len(bodies)),
		HousePlanets:   make(map[int][]Body),
		ElementBalance: make(map[Element]int, len(Elements)),
	}
	for _, e := range Elements {
		s.ElementBalance[e] = 0
	}

	for _, b := range bodies {
		pos, err := ch.Get(b)
		if err != nil {
			return Summary{}, fmt.Errorf("%w: %s: %w", ErrBodyUnavailable, b, err)
		}
		pl := Placement{Sign: pos.Sign, Degree: Round2(pos.Lon)}
		if house, ok := ch.HouseOf(pos.Lon); ok {
			pl.House = house
			s.HousePlanets[house] = append(s.HousePlanets[house], b)
		} else {
			s.HouseMisses++
		}
		s.Planets[b] = pl

		if e, ok := pos.Sign.Element(); ok {
			s.ElementBalance[e]++
		}
	}
	s.Dominant = Dominant(s.ElementBalance)

	for _, f := range []struct {
		body Body
		dst  *Sign
	}{
		{Sun, &s.SunSign},
		{Moon, &s.MoonSign},
		{Asc, &s.AscSign},
		{NorthNode, &s.NorthNodeSign},
	} {
		sign, err := signFor(ch, s.Planets, f.body)
		if err != nil {
			return Summary{}, err
		}
		*f.dst = sign
	}
	return s, nil
}

func signFor(ch Chart, known map[Body]Placement, b Body) (Sign, error) {
	if p, ok := known[b]; ok {
		return p.Sign, nil
	}
	pos, err := ch.Get(b)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBodyUnavailable, b, err)
	}
	return pos.Sign, nil
}

// Dominant returns the element with the highest count. Ties go to the
// element listed first in Elements.
func Dominant(tally map[Element]int) Element {
	best := Elements[0]
	for _, e := range Elements[1:] {
		if tally[e] > tally[best] {
			best = e
		}
	}
	return best
}

// Round2 rounds deg to two decimal places.
func Round2(deg float64) float64 {
	return math.Round(deg*100) / 100
}
