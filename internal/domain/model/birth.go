// Package model contains domain models passed between layers.
package model

import "time"

// Birth is a parsed and checked birth record.
type Birth struct {
	Name   string
	Local  time.Time // birth instant in the stated fixed offset
	Offset string    // offset literal as given, e.g. "+09:00"
	Lat    float64   // decimal degrees, north positive
	Lon    float64   // decimal degrees, east positive
}

// Year returns the local calendar year of birth.
func (b Birth) Year() int { return b.Local.Year() }

// Date returns the local calendar date at UTC midnight, the form the
// day-count calendars expect.
func (b Birth) Date() time.Time {
	y, m, d := b.Local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
