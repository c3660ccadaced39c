package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	applogger "AstroSignal/pkg/logger"
)

type allowN int

func (a *allowN) Allow(string) bool {
	if *a <= 0 {
		return false
	}
	*a--
	return true
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRateLimit(t *testing.T) {
	budget := allowN(1)
	e := echo.New()
	e.Use(RateLimit(&budget))
	e.GET("/api/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/api/x").Code)
	rec := serve(e, http.MethodGet, "/api/x")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRecoverAndLogging(t *testing.T) {
	var buf bytes.Buffer
	l := applogger.NewWriter(&buf, "debug")
	e := echo.New()
	e.Use(Recover(l), RequestLogging(l, time.Second))
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })

	rec := serve(e, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "kaboom")
}

func corsRequest(e *echo.Echo, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/x", nil)
	if origin != "" {
		req.Header.Set(echo.HeaderOrigin, origin)
	}
	if preflight {
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"*"}, AllowMethods: []string{http.MethodGet}, MaxAge: 60}))
	e.OPTIONS("/api/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := corsRequest(e, http.MethodOptions, "https://example.test", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
	assert.Equal(t, "60", rec.Header().Get(echo.HeaderAccessControlMaxAge))
}

func TestCORSRestrictedOrigins(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins:  []string{"https://dash.example.test"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		ExposeHeaders: []string{echo.HeaderLocation},
	}))
	e.GET("/api/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.OPTIONS("/api/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := corsRequest(e, http.MethodGet, "https://dash.example.test", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://dash.example.test", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "Location", rec.Header().Get(echo.HeaderAccessControlExposeHeaders))

	rec = corsRequest(e, http.MethodGet, "https://evil.test", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	rec = corsRequest(e, http.MethodOptions, "https://evil.test", true)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		origins []string
		origin  string
		want    bool
	}{
		{nil, "https://a.test", true},
		{[]string{"https://a.test"}, "", true},
		{[]string{"*"}, "https://a.test", true},
		{[]string{"https://a.test"}, "HTTPS://A.TEST", true},
		{[]string{"https://a.test"}, "https://b.test", false},
		{[]string{"https://*.example.test"}, "https://dash.example.test", true},
		{[]string{"https://*.example.test"}, "http://dash.example.test", false},
		{[]string{"https://*.example.test"}, "https://example.test", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OriginAllowed(tt.origins, tt.origin), "%v %q", tt.origins, tt.origin)
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(429))
	assert.Equal(t, "5xx", statusClass(503))
}
