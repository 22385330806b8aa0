package sampleprofiles

import "time"

// Config holds configuration for a sample run against a live service.
type Config struct {
	BaseURL    string        // Base URL of the service
	Count      int           // Number of inputs to generate
	Workers    int           // Number of concurrent submissions
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated inputs
	Verbose    bool          // Log every mismatch in full
}

// Stats holds run statistics.
type Stats struct {
	InputsGenerated int
	Submitted       int
	Consistent      int
	Mismatched      int
	Failed          int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
