package registration

import "errors"

var (
	// ErrNotFound indicates no registration matches the given ID.
	ErrNotFound = errors.New("registration: not found")

	// ErrMissingEventName indicates an empty event name.
	ErrMissingEventName = errors.New("registration: event name is required")

	// ErrMissingZone indicates an empty zone ID.
	ErrMissingZone = errors.New("registration: zone is required")

	// ErrMissingEmail indicates an empty registrant email.
	ErrMissingEmail = errors.New("registration: registrant email is required")

	// ErrInvalidTimeRange indicates the event ends before it starts.
	ErrInvalidTimeRange = errors.New("registration: event ends before it starts")

	// ErrInvalidStatus indicates an unrecognised status value.
	ErrInvalidStatus = errors.New("registration: invalid status")
)
