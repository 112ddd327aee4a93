package http

import (
	"fmt"
	"net/http"
)

// AppError is an error the boundary can render with a status and a stable
// machine-readable code.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

var statusCodes = map[int]string{
	http.StatusBadRequest:          "ERR_BAD_REQUEST",
	http.StatusNotFound:            "ERR_NOT_FOUND",
	http.StatusUnprocessableEntity: "ERR_UNPROCESSABLE",
	http.StatusTooManyRequests:     "ERR_RATE_LIMITED",
	http.StatusInternalServerError: "ERR_INTERNAL",
}

// NewAppError builds an AppError whose code follows from status.
func NewAppError(status int, message string) *AppError {
	code, ok := statusCodes[status]
	if !ok {
		code = fmt.Sprintf("ERR_HTTP_%d", status)
	}
	return &AppError{Code: code, Message: message, Status: status}
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError attaches the cause. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func NotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

// UnprocessableError is for well-formed requests the data cannot satisfy.
func UnprocessableError(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message)
}

func InternalError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message)
}
