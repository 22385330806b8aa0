package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/kepler"
	"github.com/soniakeys/meeus/v3/moonphase"
	"github.com/soniakeys/meeus/v3/moonposition"
	pe "github.com/soniakeys/meeus/v3/planetelements"
	"github.com/soniakeys/unit"

	"github.com/okian/birthprofile/internal/domain/chart"
)

const (
	j2000         = 2451545.0
	daysPerYear   = 365.25
	synodicMonth  = 29.530588861
	monthsPerYear = daysPerYear / synodicMonth
)

// meanElementBodies maps chart bodies to planetelements ids.
var meanElementBodies = map[chart.Body]int{
	chart.Mercury: pe.Mercury,
	chart.Venus:   pe.Venus,
	chart.Mars:    pe.Mars,
	chart.Jupiter: pe.Jupiter,
	chart.Saturn:  pe.Saturn,
	chart.Uranus:  pe.Uranus,
	chart.Neptune: pe.Neptune,
}

// meanHeliocentric places planet id on its mean Keplerian orbit, ecliptic
// and equinox of date.
func meanHeliocentric(id int, jde float64) polar {
	var e pe.Elements
	pe.Mean(id, jde, &e)

	m := unit.Angle(rad(chart.Normalize(deg((e.Lon - e.Peri).Rad()))))
	ea := kepler.Kepler3(e.Ecc, m)
	r := kepler.Radius(ea, e.Ecc, e.Axis)

	// argument of latitude: true anomaly plus argument of perihelion
	u := kepler.True(ea, e.Ecc).Rad() + (e.Peri - e.Node).Rad()
	node, inc := e.Node.Rad(), e.Inc.Rad()

	x := r * (math.Cos(node)*math.Cos(u) - math.Sin(node)*math.Sin(u)*math.Cos(inc))
	y := r * (math.Sin(node)*math.Cos(u) + math.Cos(node)*math.Sin(u)*math.Cos(inc))
	z := r * math.Sin(u) * math.Sin(inc)
	return polar{l: math.Atan2(y, x), b: math.Asin(z / r), r: r}
}

// lastSyzygy returns the Julian day of the latest new or full moon at or
// before jd.
func lastSyzygy(jd float64) float64 {
	year := 2000 + (jd-j2000)/daysPerYear
	last := math.Inf(-1)
	for _, phase := range []func(float64) float64{moonphase.New, moonphase.Full} {
		// the event nearest year may fall after jd; one lunation earlier cannot
		for _, back := range []float64{0, 1} {
			if t := phase(year - back/monthsPerYear); t <= jd && t > last {
				last = t
			}
		}
	}
	return last
}

// syzygyLongitude is the moon's longitude at the prenatal lunation.
func syzygyLongitude(jd float64) float64 {
	lon, _, _ := moonposition.Position(lastSyzygy(jd))
	return lon.Deg()
}
