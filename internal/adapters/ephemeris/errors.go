package ephemeris

import "errors"

// Sentinel kinds for ephemeris errors. All of them are fatal for a chart.
var (
	ErrInvalidRequest  = errors.New("invalid chart request")
	ErrUnsupportedBody = errors.New("unsupported body")
	ErrEphemeris       = errors.New("ephemeris data unavailable")
)
