package parking

import "errors"

var (
	// ErrInvalidToken is returned when a scan token resolves to no user.
	ErrInvalidToken = errors.New("invalid scan token")

	// ErrSpotNotFound is returned when an explicitly requested spot does
	// not exist.
	ErrSpotNotFound = errors.New("spot not found")

	// ErrSpotUnavailable is returned when an explicitly requested spot is
	// not available.
	ErrSpotUnavailable = errors.New("spot is not available")
)
