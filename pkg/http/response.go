package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"OpenFOF/pkg/http/middleware"
	applogger "OpenFOF/pkg/logger"
)

// DataResponse writes the envelope with statusCode as both HTTP and body status.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// BadRequestResponse writes validation errors as a 400.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusBadRequest, data)
}

// AppErrorResponse renders an AppError found in err's chain. Anything else
// becomes a generic 500 so internals never reach the client.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		return DataResponse(c, appErr.Status, []*AppError{appErr})
	}
	c.Set(middleware.ErrorKey, err)
	return DataResponse(c, http.StatusInternalServerError, []*AppError{InternalError("Something went wrong")})
}

// ErrorHandler renders errors that escape handlers, such as unknown routes or
// methods, in the response envelope.
func ErrorHandler(l *applogger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			_ = DataResponse(c, he.Code, []*AppError{NewAppError(he.Code, msg)})
			return
		}
		l.Error("unhandled error",
			applogger.String("route", c.Path()),
			applogger.Error(err),
		)
		_ = AppErrorResponse(c, err)
	}
}
