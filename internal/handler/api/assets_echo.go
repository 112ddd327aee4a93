package api

import (
	"github.com/labstack/echo/v4"

	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/usecase"
	xhttp "OpenFOF/pkg/http"
	xlogger "OpenFOF/pkg/logger"
)

// AssetsEchoHandler serves catalog lookups and per-asset statistics.
type AssetsEchoHandler struct {
	logger    *xlogger.Logger
	assets    *usecase.AssetQueries
	analytics *usecase.PortfolioAnalytics
}

func NewAssetsEchoHandler(logger *xlogger.Logger, assets *usecase.AssetQueries, analytics *usecase.PortfolioAnalytics) *AssetsEchoHandler {
	return &AssetsEchoHandler{logger: logger, assets: assets, analytics: analytics}
}

func (h *AssetsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/assets")
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.GET("/symbol/:symbol", h.BySymbol)
	g.GET("/:id", h.ByID)
	g.GET("/:id/stats", h.Stats)
}

// List returns the catalog, paginated when page or page_size is given.
func (h *AssetsEchoHandler) List(c echo.Context) error {
	req := &models.ListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	all := h.assets.List()
	if !wantsPage(c) {
		return xhttp.SuccessResponse(c, all)
	}
	return xhttp.SuccessResponse(c, usecase.Paginate(all, req.Page, req.PageSize))
}

func (h *AssetsEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	found, err := h.assets.Search(req.Query)
	if err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	if !wantsPage(c) {
		return xhttp.SuccessResponse(c, found)
	}
	return xhttp.SuccessResponse(c, usecase.Paginate(found, req.Page, req.PageSize))
}

func (h *AssetsEchoHandler) ByID(c echo.Context) error {
	a, err := h.assets.ByID(c.Param("id"))
	if err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *AssetsEchoHandler) BySymbol(c echo.Context) error {
	a, err := h.assets.BySymbol(c.Param("symbol"))
	if err != nil {
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *AssetsEchoHandler) Stats(c echo.Context) error {
	req := &models.AssetStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.analytics.AssetStats(c.Request().Context(), req.ID, req.Days, req.RiskFreeRate)
	if err != nil {
		h.logger.Debug("asset stats usecase error", xlogger.String("id", req.ID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func wantsPage(c echo.Context) bool {
	q := c.QueryParams()
	return q.Has("page") || q.Has("page_size")
}
