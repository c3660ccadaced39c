package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthAndRoutes(t *testing.T) {
	down := false
	routes := HandlerFunc(func(e *echo.Echo) {
		e.GET("/api/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
		e.GET("/api/fail", func(c echo.Context) error {
			return AppErrorResponse(c, ServiceUnavailableError("ephemeris down"))
		})
	})
	s := NewServer([]Handler{routes},
		WithMetricsPath(""),
		WithHealth(func(context.Context) HealthStatus {
			if down {
				return HealthStatus{Status: "degraded"}
			}
			return HealthStatus{Status: "ok", Backend: "analytic"}
		}),
	)

	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := do("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status int          `json:"status"`
		Data   HealthStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "analytic", body.Data.Backend)

	down = true
	assert.Equal(t, http.StatusServiceUnavailable, do("/healthz").Code)

	assert.Equal(t, http.StatusOK, do("/api/ping").Code)
	rec = do("/api/fail")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UNAVAILABLE")
}

func TestAppErrorResponse_UnknownError(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, AppErrorResponse(c, assert.AnError))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
