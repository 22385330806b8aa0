package ephemeris

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/unit"

	"github.com/okian/birthprofile/internal/domain/chart"
)

// Literal formats accepted by Build.
const (
	DateLayout = "2006/01/02"
	TimeLayout = "15:04"
)

// Request describes a chart in the literal formats the builder expects.
type Request struct {
	Date   string // YYYY/MM/DD
	Time   string // HH:MM, local
	Offset string // +HH:MM or -HH:MM from UTC
	Lat    string // sexagesimal, see FormatDMS
	Lon    string // sexagesimal, east positive
	Bodies []chart.Body
}

// FormatDMS renders decimal degrees as "+DD:MM:SS". Minutes and seconds are
// truncated, not rounded.
func FormatDMS(deg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
		deg = -deg
	}
	// whole arcseconds; the epsilon absorbs binary representation error
	// so 35.68 gives 35:40:48 rather than 35:40:47
	secs := int64(math.Floor(unit.AngleFromDeg(deg).Sec() + 1e-6))
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs%3600/60, secs%60)
}

// ParseDMS is the inverse of FormatDMS. Minutes and seconds may be omitted.
func ParseDMS(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("%w: empty coordinate", ErrInvalidRequest)
	}
	var neg byte = '+'
	switch v[0] {
	case '-', '+':
		neg = v[0]
		v = v[1:]
	}
	parts := strings.Split(v, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: coordinate %q", ErrInvalidRequest, v)
	}
	var dms [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n >= 60) {
			return 0, fmt.Errorf("%w: coordinate %q", ErrInvalidRequest, v)
		}
		dms[i] = n
	}
	return unit.NewAngle(neg, dms[0], dms[1], float64(dms[2])).Deg(), nil
}

// ParseOffset parses "+HH:MM" into a fixed zone.
func ParseOffset(v string) (*time.Location, error) {
	t, err := time.Parse("-07:00", v)
	if err != nil {
		return nil, fmt.Errorf("%w: offset %q: %w", ErrInvalidRequest, v, err)
	}
	_, secs := t.Zone()
	return time.FixedZone(v, secs), nil
}

// instant resolves the request's local date, time and offset to UTC.
func (r Request) instant() (time.Time, error) {
	loc, err := ParseOffset(r.Offset)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return t.UTC(), nil
}

// location parses the observer coordinates.
func (r Request) location() (lat, lon float64, err error) {
	if lat, err = ParseDMS(r.Lat); err != nil {
		return 0, 0, err
	}
	if lon, err = ParseDMS(r.Lon); err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("%w: position %s %s out of range", ErrInvalidRequest, r.Lat, r.Lon)
	}
	return lat, lon, nil
}
