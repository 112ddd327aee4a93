package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1"`
	Days    int      `json:"days" default:"30" validate:"gte=1,lte=365"`
	Mode    string   `json:"mode" default:"union" validate:"oneof=union inner"`
}

type testHandler struct{}

func (testHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/echo", func(c echo.Context) error {
		var req echoRequest
		if errs := ReadAndValidateRequest(c, &req); errs != nil {
			return BadRequestResponse(c, errs)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("asset not found").WithError(errors.New("no row")))
	})
	e.GET("/boom", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("connection reset by peer"))
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("bad state")
	})
}

func serve(s *Server, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (APIResponse, json.RawMessage) {
	t.Helper()
	var env struct {
		APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, rec.Code, env.Status)
	return env.APIResponse, env.Data
}

func TestReadAndValidateRequest(t *testing.T) {
	s := NewServer([]Handler{testHandler{}}, WithMetricsPath(""))

	rec := serve(s, http.MethodPost, "/echo", `{"symbols":["TLT"]}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decodeEnvelope(t, rec)
	var got echoRequest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 30, got.Days)
	assert.Equal(t, "union", got.Mode)

	rec = serve(s, http.MethodPost, "/echo", `{"symbols":[],"days":400,"mode":"outer"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	_, data = decodeEnvelope(t, rec)
	var errs []ValidationError
	require.NoError(t, json.Unmarshal(data, &errs))
	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "symbols must be at least 1 items", byField["symbols"].Message)
	assert.Equal(t, "ERR_LTE", byField["days"].Code)
	assert.Equal(t, "mode must be one of: union, inner", byField["mode"].Message)

	rec = serve(s, http.MethodPost, "/echo", `{"symbols":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_MALFORMED")
}

func TestAppErrorResponse(t *testing.T) {
	s := NewServer([]Handler{testHandler{}}, WithMetricsPath(""))

	rec := serve(s, http.MethodGet, "/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"ERR_NOT_FOUND"`)
	assert.NotContains(t, rec.Body.String(), "no row")

	rec = serve(s, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")

	rec = serve(s, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	decodeEnvelope(t, rec)

	rec = serve(s, http.MethodGet, "/panic", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	s := NewServer([]Handler{testHandler{}},
		WithMetricsPath(""),
		WithCORSOrigins([]string{"http://localhost:3000", "*.openfof.dev"}),
	)

	rec := serve(s, http.MethodOptions, "/echo", "", map[string]string{
		"Origin":                        "https://app.openfof.dev",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.openfof.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))

	rec = serve(s, http.MethodGet, "/missing", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestRateLimit(t *testing.T) {
	calls := 0
	allow := func(string) bool {
		calls++
		return calls <= 1
	}
	s := NewServer([]Handler{testHandler{}}, WithMetricsPath(""), WithRateLimit(allow, 1500*time.Millisecond))

	assert.Equal(t, http.StatusNotFound, serve(s, http.MethodGet, "/missing", "", nil).Code)
	rec := serve(s, http.MethodGet, "/missing", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "ERR_RATE_LIMITED")
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer([]Handler{testHandler{}})
	serve(s, http.MethodGet, "/missing", "", nil)

	rec := serve(s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `openfof_http_requests_total{method="GET",route="/missing",status="404"}`)
}

func TestAppErrorCodes(t *testing.T) {
	assert.Equal(t, "ERR_UNPROCESSABLE", UnprocessableError("x").Code)
	assert.Equal(t, "ERR_HTTP_418", NewAppError(http.StatusTeapot, "x").Code)

	cause := errors.New("series too short")
	err := UnprocessableError("insufficient data").WithError(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "insufficient data: series too short", err.Error())
}
