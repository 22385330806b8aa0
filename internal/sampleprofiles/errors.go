package sampleprofiles

import "errors"

var (
	// ErrInvalidConfig indicates unusable run parameters.
	ErrInvalidConfig = errors.New("invalid sample config")
	// ErrUnhealthy indicates the service did not answer its health check.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrInconsistent indicates repeated submissions returned different profiles.
	ErrInconsistent = errors.New("inconsistent profiles")
	// ErrFixture indicates an unreadable fixture file.
	ErrFixture = errors.New("invalid fixture")
)
