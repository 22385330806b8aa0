package ephemeris

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/birthprofile/internal/domain/chart"
)

// HouseSystem selects how house cusps are derived from the angles.
type HouseSystem string

// Supported house systems.
const (
	HouseEqual     HouseSystem = "equal"
	HouseWholeSign HouseSystem = "whole_sign"
	HousePorphyry  HouseSystem = "porphyry"
)

// ParseHouseSystem accepts the config spelling of a house system.
func ParseHouseSystem(v string) (HouseSystem, error) {
	switch hs := HouseSystem(strings.ToLower(strings.TrimSpace(v))); hs {
	case "":
		return HouseEqual, nil
	case HouseEqual, HouseWholeSign, HousePorphyry:
		return hs, nil
	default:
		return "", fmt.Errorf("unknown house system: %s", v)
	}
}

// cusps returns the twelve cusp longitudes for the given angles.
func (hs HouseSystem) cusps(asc, mc float64) [12]float64 {
	var c [12]float64
	switch hs {
	case HouseWholeSign:
		start := math.Floor(chart.Normalize(asc)/30) * 30
		for i := range c {
			c[i] = chart.Normalize(start + 30*float64(i))
		}
	case HousePorphyry:
		ic := chart.Normalize(mc + 180)
		desc := chart.Normalize(asc + 180)
		below := chart.Normalize(ic - asc)  // houses 1-3
		above := chart.Normalize(desc - ic) // houses 4-6
		for i := 0; i < 3; i++ {
			c[i] = chart.Normalize(asc + below*float64(i)/3)
			c[i+3] = chart.Normalize(ic + above*float64(i)/3)
		}
		for i := 6; i < 12; i++ {
			c[i] = chart.Normalize(c[i-6] + 180)
		}
	default:
		for i := range c {
			c[i] = chart.Normalize(asc + 30*float64(i))
		}
	}
	return c
}

// houseOf finds the house whose arc [cusp_i, cusp_i+1) contains lon. It
// reports false for non-finite input or degenerate cusps.
func houseOf(cusps [12]float64, lon float64) (int, bool) {
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, false
	}
	var arcs [12]float64
	total := 0.0
	for i := range cusps {
		start, end := cusps[i], cusps[(i+1)%12]
		if math.IsNaN(start) || math.IsNaN(end) {
			return 0, false
		}
		arcs[i] = chart.Normalize(end - start)
		if arcs[i] == 0 {
			return 0, false
		}
		total += arcs[i]
	}
	if math.Abs(total-360) > 1e-6 {
		return 0, false
	}
	lon = chart.Normalize(lon)
	for i, arc := range arcs {
		if chart.Normalize(lon-cusps[i]) < arc {
			return i + 1, true
		}
	}
	return 0, false
}
