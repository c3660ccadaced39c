package api

import (
	"context"
	"errors"

	"AstroSignal/internal/domain/models"
	xhttp "AstroSignal/pkg/http"
)

// toAppError maps domain errors to HTTP errors.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrUnknownBody):
		return xhttp.FieldError("ERR_UNKNOWN_BODY", "bodies", err.Error()).WithError(err)
	case errors.Is(err, models.ErrMalformedTimestamp):
		return xhttp.FieldError("ERR_MALFORMED_TIMESTAMP", "", err.Error()).WithError(err)
	case errors.Is(err, models.ErrInvalidOrbOrCatalog):
		return xhttp.FieldError("ERR_INVALID_ORB_OR_CATALOG", "orb", err.Error()).WithError(err)
	case errors.Is(err, models.ErrInvalidParams):
		return xhttp.FieldError("ERR_INVALID_PARAMS", "", err.Error()).WithError(err)
	case errors.Is(err, models.ErrJobNotFound):
		return xhttp.NotFoundError("job not found").WithError(err)
	case errors.Is(err, models.ErrEphemerisUnavailable):
		return xhttp.ServiceUnavailableError("ephemeris unavailable").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("computation timed out").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}
