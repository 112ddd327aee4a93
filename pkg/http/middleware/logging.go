package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	applogger "OpenFOF/pkg/logger"
)

// ErrorKey is the context key under which handlers leave the cause of a
// 5xx response for the request log.
const ErrorKey = "openfof.error"

// RequestLogging logs one structured line per request. 5xx responses log
// as errors, 4xx as warnings.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("route", c.Path()),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("duration_ms", time.Since(start)),
				applogger.Int64("bytes", c.Response().Size),
			}
			if cause, ok := c.Get(ErrorKey).(error); ok {
				fields = append(fields, applogger.Error(cause))
			}
			switch {
			case status >= 500:
				l.Error("http request", fields...)
			case status >= 400:
				l.Warn("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
