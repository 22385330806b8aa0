package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrBodyUnavailable = errors.New("chart body unavailable")
	ErrNilChart        = errors.New("nil chart")
)
