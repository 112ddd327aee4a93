package api

import (
	"github.com/labstack/echo/v4"

	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/usecase"
	xhttp "OpenFOF/pkg/http"
	xlogger "OpenFOF/pkg/logger"
)

// PortfolioEchoHandler serves the portfolio analytics queries.
type PortfolioEchoHandler struct {
	logger    *xlogger.Logger
	analytics *usecase.PortfolioAnalytics
}

func NewPortfolioEchoHandler(logger *xlogger.Logger, analytics *usecase.PortfolioAnalytics) *PortfolioEchoHandler {
	return &PortfolioEchoHandler{logger: logger, analytics: analytics}
}

func (h *PortfolioEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/portfolio", h.Timeline)
	g.POST("/correlation-groups", h.CorrelationGroups)
	g.POST("/heatmap", h.Heatmap)
	g.POST("/diversify", h.Diversify)
	g.POST("/projection", h.Projection)
}

func (h *PortfolioEchoHandler) Timeline(c echo.Context) error {
	req := &models.PortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.Timeline(c.Request().Context(), req.AssetIDs, req.TimeRange)
	if err != nil {
		h.logger.Error("timeline usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PortfolioEchoHandler) CorrelationGroups(c echo.Context) error {
	req := &models.AssetIDsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.CorrelationGroups(c.Request().Context(), req.AssetIDs)
	if err != nil {
		h.logger.Error("correlation groups usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PortfolioEchoHandler) Heatmap(c echo.Context) error {
	req := &models.AssetIDsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.Heatmap(c.Request().Context(), req.AssetIDs)
	if err != nil {
		h.logger.Error("heatmap usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PortfolioEchoHandler) Diversify(c echo.Context) error {
	req := &models.AssetIDsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.Diversify(c.Request().Context(), req.AssetIDs)
	if err != nil {
		h.logger.Error("diversify usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PortfolioEchoHandler) Projection(c echo.Context) error {
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.Projection(c.Request().Context(), req.AssetID, *req.HorizonDays, req.Paths, req.WindowDays)
	if err != nil {
		h.logger.Error("projection usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}
