package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects requests when allow denies the client IP. retryAfter is
// advertised to rejected clients when positive.
func RateLimit(allow func(key string) bool, retryAfter time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if allow(c.RealIP()) {
				return next(c)
			}
			if retryAfter > 0 {
				secs := int((retryAfter + time.Second - 1) / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			}
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"status":  http.StatusTooManyRequests,
				"message": http.StatusText(http.StatusTooManyRequests),
				"data": []map[string]string{{
					"code":    "ERR_RATE_LIMITED",
					"message": "rate limit exceeded",
				}},
			})
		}
	}
}
