package service

import "errors"

// Sentinel kinds for diagnosis errors.
var (
	// ErrInvalidInput marks a birth record that cannot be parsed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrChart marks a chart the ephemeris could not build or classify.
	ErrChart = errors.New("chart unavailable")
)
