package models

import "errors"

var (
	// ErrEphemerisUnavailable is returned by providers when a body/time is
	// outside the supported range or the backend call failed.
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")
	// ErrInvalidInterval marks a window with start after end. The timeline
	// treats it as zero samples and reports it as a warning.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrInvalidOrbOrCatalog rejects a run before sampling starts.
	ErrInvalidOrbOrCatalog = errors.New("invalid orb or aspect catalog")
	// ErrMalformedTimestamp is propagated to the caller, never coerced.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrInvalidParams      = errors.New("invalid timeline parameters")
	ErrUnknownBody        = errors.New("unknown body")
	ErrJobNotFound        = errors.New("job not found")
)
