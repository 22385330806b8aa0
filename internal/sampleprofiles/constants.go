package sampleprofiles

import "time"

// Defaults shared by the CLI flags.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultCount   = 200
	DefaultTimeout = 10 * time.Second
	// DefaultWorkers is multiplied by runtime.NumCPU().
	DefaultWorkers = 2
)

// Generation bounds.
const (
	firstYear = 1900
	lastYear  = 2020
	// Equal houses stay well defined below the polar circles.
	maxLatitude = 60.0
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

const percentageMultiplier = 100
