package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpenFOF/internal/catalog"
	"OpenFOF/internal/domain/models"
	"OpenFOF/internal/repository"
	"OpenFOF/internal/services/projection"
	"OpenFOF/internal/usecase"
	xlogger "OpenFOF/pkg/logger"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func fixtureSeries(n int, p0 float64, step func(i int) float64) []models.PriceObservation {
	obs := make([]models.PriceObservation, 0, n)
	price := p0
	for d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); len(obs) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if len(obs) > 0 {
			price *= 1 + step(len(obs))
		}
		obs = append(obs, models.PriceObservation{Date: d, Close: price})
	}
	return obs
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryPriceStore()
	ctx := context.Background()
	require.NoError(t, store.StoreBatch(ctx, "BITQ", fixtureSeries(120, 20, func(i int) float64 {
		if i%2 == 0 {
			return -0.01
		}
		return 0.01
	})))
	require.NoError(t, store.StoreBatch(ctx, "GDX", fixtureSeries(120, 30, func(i int) float64 {
		if (i/2)%2 == 0 {
			return 0.01
		}
		return -0.01
	})))
	require.NoError(t, store.StoreBatch(ctx, "TLT", []models.PriceObservation{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), Close: 110},
	}))

	cat := catalog.Default()
	l := xlogger.Nop()
	analytics := usecase.NewPortfolioAnalytics(cat, store,
		projection.NewEngine(projection.WithSeed(7), projection.WithPaths(100)),
		usecase.WithLogger(l))

	e := echo.New()
	NewHealthEchoHandler().RegisterRoutes(e)
	NewAssetsEchoHandler(l, usecase.NewAssetQueries(cat), analytics).RegisterRoutes(e)
	NewPortfolioEchoHandler(l, analytics).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.Status)
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	code, env := do(t, newTestEcho(t), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"healthy","service":"OpenFOF Asset API","version":"1.0.0"}`, string(env.Data))
}

func TestAssetRoutes(t *testing.T) {
	e := newTestEcho(t)

	code, env := do(t, e, http.MethodGet, "/api/assets", "")
	require.Equal(t, http.StatusOK, code)
	var all []models.Asset
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 8)

	code, env = do(t, e, http.MethodGet, "/api/assets?page=2&page_size=3", "")
	require.Equal(t, http.StatusOK, code)
	var page models.AssetPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 2, page.Pagination.Page)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Len(t, page.Data, 3)

	code, env = do(t, e, http.MethodGet, "/api/assets/symbol/gdx", "")
	require.Equal(t, http.StatusOK, code)
	var a models.Asset
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "asset-002", a.ID)

	code, _ = do(t, e, http.MethodGet, "/api/assets/asset-999", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, e, http.MethodGet, "/api/assets/search", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, e, http.MethodGet, "/api/assets/search?q=bond", "")
	require.Equal(t, http.StatusOK, code)
	var found []models.Asset
	require.NoError(t, json.Unmarshal(env.Data, &found))
	require.NotEmpty(t, found)
	assert.Equal(t, "TLT", found[0].Symbol)
}

func TestAssetStatsRoute(t *testing.T) {
	e := newTestEcho(t)

	code, env := do(t, e, http.MethodGet, "/api/assets/asset-007/stats?days=30", "")
	require.Equal(t, http.StatusOK, code)
	var stats models.AssetStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.InDelta(t, 0.10, stats.PercentageChange, 1e-12)
	assert.Nil(t, stats.SharpeRatio)

	code, _ = do(t, e, http.MethodGet, "/api/assets/asset-007/stats?days=365", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = do(t, e, http.MethodGet, "/api/assets/asset-007/stats?days=-5", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPortfolioRoutesValidate(t *testing.T) {
	e := newTestEcho(t)

	code, _ := do(t, e, http.MethodPost, "/api/heatmap", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := do(t, e, http.MethodPost, "/api/portfolio", `{"assetIds":["asset-001"],"timeRange":"2W"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "timeRange")

	code, _ = do(t, e, http.MethodPost, "/api/diversify", `{"assetIds":["asset-999"]}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPortfolioRoutes(t *testing.T) {
	e := newTestEcho(t)

	code, env := do(t, e, http.MethodPost, "/api/heatmap", `{"assetIds":["asset-001","asset-002"]}`)
	require.Equal(t, http.StatusOK, code)
	var hm models.Heatmap
	require.NoError(t, json.Unmarshal(env.Data, &hm))
	assert.Equal(t, []string{"BITQ", "GDX"}, hm.Labels)

	code, env = do(t, e, http.MethodPost, "/api/diversify", `{"assetIds":["asset-001"]}`)
	require.Equal(t, http.StatusOK, code)
	var cands []models.DiversificationCandidate
	require.NoError(t, json.Unmarshal(env.Data, &cands))
	require.NotEmpty(t, cands)
	assert.Equal(t, "GDX", cands[0].Symbol)

	code, env = do(t, e, http.MethodPost, "/api/portfolio", `{"assetIds":["asset-001","asset-002"]}`)
	require.Equal(t, http.StatusOK, code)
	var timeline struct {
		Historical []map[string]any      `json:"historical"`
		Future     []map[string]any      `json:"future"`
		Stats      models.PortfolioStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &timeline))
	require.NotEmpty(t, timeline.Historical)
	assert.Contains(t, timeline.Historical[0], "average")
	assert.Contains(t, timeline.Historical[0], "date")
	assert.Len(t, timeline.Future, 90)

	code, env = do(t, e, http.MethodPost, "/api/projection", `{"assetId":"asset-002","horizonDays":5}`)
	require.Equal(t, http.StatusOK, code)
	var proj models.Projection
	require.NoError(t, json.Unmarshal(env.Data, &proj))
	assert.Equal(t, 100, proj.Paths)
	assert.Len(t, proj.Days, 5)

	code, env = do(t, e, http.MethodPost, "/api/projection", `{"assetId":"asset-002","horizonDays":0}`)
	require.Equal(t, http.StatusOK, code)
	proj = models.Projection{}
	require.NoError(t, json.Unmarshal(env.Data, &proj))
	assert.Empty(t, proj.Days)

	code, env = do(t, e, http.MethodPost, "/api/projection", `{"assetId":"asset-002"}`)
	require.Equal(t, http.StatusOK, code)
	proj = models.Projection{}
	require.NoError(t, json.Unmarshal(env.Data, &proj))
	assert.Len(t, proj.Days, 90)

	code, _ = do(t, e, http.MethodPost, "/api/correlation-groups", `{"assetIds":["asset-002"]}`)
	assert.Equal(t, http.StatusOK, code)
}
