package api

import (
	"errors"

	"OpenFOF/internal/domain/models"
	xhttp "OpenFOF/pkg/http"
)

// appError maps analytics sentinels to HTTP application errors.
func appError(err error) error {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInvalidArgument):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrDivisionByZero):
		return xhttp.UnprocessableError(err.Error()).WithError(err)
	default:
		return err
	}
}
