package api

import (
	"github.com/labstack/echo/v4"

	xhttp "OpenFOF/pkg/http"
)

const (
	serviceName    = "OpenFOF Asset API"
	serviceVersion = "1.0.0"
)

type HealthEchoHandler struct{}

func NewHealthEchoHandler() *HealthEchoHandler { return &HealthEchoHandler{} }

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
