// Package ephemeris builds charts from a date, time and place. It adapts the
// meeus astronomical algorithms to the chart.Chart contract: tropical
// geocentric longitudes of the requested bodies plus a house lookup.
package ephemeris

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/okian/birthprofile/internal/domain/chart"
)

// General precession in longitude, degrees per Julian century.
const precessionPerCentury = 1.396971

const secondsPerDegreeOfTime = 240 // 86400s / 360°

// vsop87Bodies maps chart bodies to VSOP87 planet ids.
var vsop87Bodies = map[chart.Body]int{
	chart.Mercury: pp.Mercury,
	chart.Venus:   pp.Venus,
	chart.Mars:    pp.Mars,
	chart.Jupiter: pp.Jupiter,
	chart.Saturn:  pp.Saturn,
	chart.Uranus:  pp.Uranus,
	chart.Neptune: pp.Neptune,
}

// supportedBodies are the bodies every builder places.
var supportedBodies = []chart.Body{
	chart.Sun, chart.Moon, chart.Mercury, chart.Venus, chart.Mars,
	chart.Jupiter, chart.Saturn, chart.Uranus, chart.Neptune, chart.Pluto,
	chart.NorthNode, chart.SouthNode, chart.Syzygy, chart.ParsFortuna,
	chart.Asc, chart.MC,
}

// Option configures a Builder.
type Option func(*Builder)

// WithHouseSystem sets the house system.
func WithHouseSystem(hs HouseSystem) Option {
	return func(b *Builder) {
		if hs != "" {
			b.houses = hs
		}
	}
}

// WithDataPath points the builder at a directory of VSOP87B files used for
// Mercury through Neptune. Without it those planets come from mean orbital
// elements, good to a fraction of a degree.
func WithDataPath(path string) Option {
	return func(b *Builder) {
		b.dataPath = path
	}
}

// Builder computes charts. It is safe for concurrent use; planet tables are
// loaded once on first use.
type Builder struct {
	houses   HouseSystem
	dataPath string

	loadOnce sync.Once
	planets  map[chart.Body]*pp.V87Planet
	loadErr  error
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{houses: HouseEqual}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HouseSystem returns the configured house system.
func (b *Builder) HouseSystem() HouseSystem { return b.houses }

// Supported lists the bodies this builder can place, in chart.Objects order
// followed by the angles.
func (b *Builder) Supported() []chart.Body {
	return append([]chart.Body(nil), supportedBodies...)
}

func (b *Builder) load() error {
	b.loadOnce.Do(func() {
		if b.dataPath == "" {
			return
		}
		b.planets = make(map[chart.Body]*pp.V87Planet, len(vsop87Bodies))
		for body, id := range vsop87Bodies {
			p, err := pp.LoadPlanetPath(id, b.dataPath)
			if err != nil {
				b.loadErr = fmt.Errorf("%w: %s: %w", ErrEphemeris, body, err)
				return
			}
			b.planets[body] = p
		}
	})
	return b.loadErr
}

// Build computes the chart described by req.
func (b *Builder) Build(ctx context.Context, req Request) (chart.Chart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ut, err := req.instant()
	if err != nil {
		return nil, err
	}
	lat, lon, err := req.location()
	if err != nil {
		return nil, err
	}

	supported := make(map[chart.Body]bool)
	for _, body := range b.Supported() {
		supported[body] = true
	}
	for _, body := range req.Bodies {
		if !supported[body] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedBody, body)
		}
	}
	if err := b.load(); err != nil {
		return nil, err
	}

	// Delta T is ignored; its effect is far below sign or house resolution.
	jd := julianDay(ut)
	T := base.J2000Century(jd)

	sky := &sky{lons: make(map[chart.Body]float64, len(supported))}

	sunLon := solar.ApparentLongitude(T).Deg()
	moonLon, _, _ := moonposition.Position(jd)
	node := moonposition.Node(jd).Deg()

	sky.lons[chart.Sun] = sunLon
	sky.lons[chart.Moon] = moonLon.Deg()
	sky.lons[chart.NorthNode] = node
	sky.lons[chart.SouthNode] = node + 180

	asc, mc := angles(jd, lat, lon)
	sky.lons[chart.Asc] = asc
	sky.lons[chart.MC] = mc
	sky.lons[chart.ParsFortuna] = parsFortuna(asc, sunLon, moonLon.Deg())
	sky.lons[chart.Syzygy] = syzygyLongitude(jd)

	earth := earthHeliocentric(T)
	sky.lons[chart.Pluto] = plutoLongitude(jd, T, earth)
	if b.planets != nil {
		for body, p := range b.planets {
			l, bt, r := p.Position(jd)
			sky.lons[body] = geocentric(polar{l.Rad(), bt.Rad(), r}, earth)
		}
	} else {
		for body, id := range meanElementBodies {
			sky.lons[body] = geocentric(meanHeliocentric(id, jd), earth)
		}
	}

	for body, v := range sky.lons {
		sky.lons[body] = chart.Normalize(v)
	}
	sky.cusps = b.houses.cusps(sky.lons[chart.Asc], sky.lons[chart.MC])
	return sky, nil
}

// sky is the chart.Chart produced by Build.
type sky struct {
	lons  map[chart.Body]float64
	cusps [12]float64
}

func (s *sky) Get(b chart.Body) (chart.Position, error) {
	lon, ok := s.lons[b]
	if !ok {
		return chart.Position{}, fmt.Errorf("%w: %s", ErrUnsupportedBody, b)
	}
	return chart.Position{Body: b, Sign: chart.SignOf(lon), Lon: lon}, nil
}

func (s *sky) HouseOf(lon float64) (int, bool) {
	return houseOf(s.cusps, lon)
}

func julianDay(ut time.Time) float64 {
	y, m, d := ut.Date()
	secs := ut.Hour()*3600 + ut.Minute()*60 + ut.Second()
	return julian.CalendarGregorianToJD(y, int(m), float64(d)+float64(secs)/86400)
}

// angles returns the ascendant and midheaven for an observer at lat/lon
// (degrees, east positive).
func angles(jd, lat, lon float64) (asc, mc float64) {
	gast := float64(sidereal.Apparent(jd)) / secondsPerDegreeOfTime
	ramc := rad(chart.Normalize(gast + lon))
	_, dEps := nutation.Nutation(jd)
	eps := (nutation.MeanObliquity(jd) + dEps).Rad()
	phi := rad(lat)

	mc = deg(math.Atan2(math.Sin(ramc), math.Cos(ramc)*math.Cos(eps)))
	asc = deg(math.Atan2(math.Cos(ramc), -(math.Sin(ramc)*math.Cos(eps) + math.Tan(phi)*math.Sin(eps))))
	return chart.Normalize(asc), chart.Normalize(mc)
}

// parsFortuna applies the day/night formula. The sun is above the horizon
// when it sits in houses 7-12, i.e. 180° or more past the ascendant.
func parsFortuna(asc, sun, moon float64) float64 {
	if chart.Normalize(sun-asc) >= 180 {
		return asc + moon - sun
	}
	return asc + sun - moon
}

// polar is a heliocentric ecliptic position: longitude and latitude in
// radians, distance in AU.
type polar struct {
	l, b, r float64
}

func (p polar) xyz() (x, y, z float64) {
	return p.r * math.Cos(p.b) * math.Cos(p.l),
		p.r * math.Cos(p.b) * math.Sin(p.l),
		p.r * math.Sin(p.b)
}

// earthHeliocentric derives the earth's position, ecliptic of date, from
// the geometric solar longitude.
func earthHeliocentric(T float64) polar {
	s, _ := solar.True(T)
	return polar{l: s.Rad() + math.Pi, b: 0, r: solar.Radius(T)}
}

// geocentric converts a heliocentric position to geocentric longitude in degrees.
func geocentric(p, earth polar) float64 {
	x, y, _ := p.xyz()
	ex, ey, _ := earth.xyz()
	return deg(math.Atan2(y-ey, x-ex))
}

// plutoLongitude evaluates Pluto in the J2000 frame and precesses the result
// to the equinox of date.
func plutoLongitude(jd, T float64, earth polar) float64 {
	l, b, r := pluto.Heliocentric(jd)
	shift := rad(precessionPerCentury * T)
	earth2000 := polar{l: earth.l - shift, b: earth.b, r: earth.r}
	return geocentric(polar{l.Rad(), b.Rad(), r}, earth2000) + precessionPerCentury*T
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
