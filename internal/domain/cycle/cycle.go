// Package cycle models calendars that repeat over a fixed, ordered table of
// labels. A position is an integer offset from an epoch; the label is the
// offset taken modulo the table length.
package cycle

import (
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Cycle is an immutable ordered table of labels indexed modulo its length.
type Cycle[T any] struct {
	labels []T
}

// New builds a Cycle over labels. It panics on an empty table since every
// lookup would divide by zero.
func New[T any](labels ...T) Cycle[T] {
	if len(labels) == 0 {
		panic("cycle: empty label table")
	}
	cp := make([]T, len(labels))
	copy(cp, labels)
	return Cycle[T]{labels: cp}
}

// Numbered returns the labels 1..n, for cycles whose label is the position itself.
func Numbered(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Len returns the period of the cycle.
func (c Cycle[T]) Len() int { return len(c.labels) }

// Index normalizes an arbitrary offset into [0, Len()).
func (c Cycle[T]) Index(offset int) int { return Mod(offset, len(c.labels)) }

// Label returns the label at offset, wrapping in both directions.
func (c Cycle[T]) Label(offset int) T { return c.labels[c.Index(offset)] }

// Labels returns a copy of the table.
func (c Cycle[T]) Labels() []T {
	cp := make([]T, len(c.labels))
	copy(cp, c.labels)
	return cp
}

// DayCycle is a Cycle advanced once per civil day from an epoch date.
type DayCycle[T any] struct {
	epoch time.Time
	cycle Cycle[T]
}

// NewDayCycle anchors labels[0] at the epoch date.
func NewDayCycle[T any](epoch time.Time, labels ...T) DayCycle[T] {
	return DayCycle[T]{epoch: civil(epoch), cycle: New(labels...)}
}

// Epoch returns the date mapped to index 0.
func (d DayCycle[T]) Epoch() time.Time { return d.epoch }

// Len returns the period in days.
func (d DayCycle[T]) Len() int { return d.cycle.Len() }

// Offset returns the number of days from the epoch to date.
func (d DayCycle[T]) Offset(date time.Time) int { return DaysBetween(d.epoch, date) }

// Index returns the table position for date.
func (d DayCycle[T]) Index(date time.Time) int { return d.cycle.Index(d.Offset(date)) }

// Label returns the label for date.
func (d DayCycle[T]) Label(date time.Time) T { return d.cycle.Label(d.Offset(date)) }

// Labels returns a copy of the table.
func (d DayCycle[T]) Labels() []T { return d.cycle.Labels() }

// YearCycle is a Cycle advanced once per calendar year from an epoch year.
type YearCycle[T any] struct {
	epoch int
	cycle Cycle[T]
}

// NewYearCycle anchors labels[0] at the epoch year.
func NewYearCycle[T any](epoch int, labels ...T) YearCycle[T] {
	return YearCycle[T]{epoch: epoch, cycle: New(labels...)}
}

// Index returns the table position for year.
func (y YearCycle[T]) Index(year int) int { return y.cycle.Index(year - y.epoch) }

// Label returns the label for year.
func (y YearCycle[T]) Label(year int) T { return y.cycle.Label(year - y.epoch) }

// Labels returns a copy of the table.
func (y YearCycle[T]) Labels() []T { return y.cycle.Labels() }

// Mod returns a mod n in [0, n) for any sign of a. n must be positive.
func Mod(a, n int) int {
	return ((a % n) + n) % n
}

// DaysBetween counts whole civil days from a to b. Time of day and location
// are dropped first, so only the calendar dates matter.
func DaysBetween(a, b time.Time) int {
	return int((civil(b).Unix() - civil(a).Unix()) / secondsPerDay)
}

// Date is a shorthand for a UTC midnight calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}
