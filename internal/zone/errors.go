package zone

import "errors"

var (
	// ErrZoneNotFound indicates the requested zone ID is not configured.
	ErrZoneNotFound = errors.New("zone: not found")

	// ErrInvalidCapacity indicates a non-positive capacity value.
	ErrInvalidCapacity = errors.New("zone: capacity must be positive")
)
