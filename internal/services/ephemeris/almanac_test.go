package ephemeris

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	"AstroSignal/pkg/config"
)

func almanacConfig(url string) *config.EphemerisConfig {
	cfg := &config.EphemerisConfig{}
	cfg.Almanac.URL = url
	cfg.Almanac.Timeout = time.Second
	cfg.Almanac.MaxAttempts = 3
	return cfg
}

func TestAlmanac_Longitude(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/longitude", r.URL.Path)
		assert.Equal(t, "moon", r.URL.Query().Get("body"))
		assert.Equal(t, "2000-01-01T12:00:00Z", r.URL.Query().Get("time"))
		_ = json.NewEncoder(w).Encode(AlmanacResponse{Body: "moon", Longitude: 383.5})
	}))
	defer srv.Close()

	a := NewAlmanac(almanacConfig(srv.URL), nil)
	lon, err := a.Longitude(context.Background(), j2000, models.Moon)

	require.NoError(t, err)
	assert.InDelta(t, 23.5, lon, 1e-9)
}

func TestAlmanac_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(AlmanacResponse{Body: "sun", Longitude: 280.4})
	}))
	defer srv.Close()

	a := NewAlmanac(almanacConfig(srv.URL), nil)
	a.backoff = time.Millisecond
	lon, err := a.Longitude(context.Background(), j2000, models.Sun)

	require.NoError(t, err)
	assert.Equal(t, 280.4, lon)
	assert.EqualValues(t, 3, calls.Load())
}

func TestAlmanac_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unknown body", http.StatusNotFound)
	}))
	defer srv.Close()

	a := NewAlmanac(almanacConfig(srv.URL), nil)
	_, err := a.Longitude(context.Background(), j2000, models.Pluto)

	assert.ErrorIs(t, err, models.ErrEphemerisUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAlmanac_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := almanacConfig(srv.URL)
	cfg.Almanac.MaxAttempts = 1
	cfg.Almanac.Breaker.MaxFailures = 2
	cfg.Almanac.Breaker.OpenTimeout = time.Minute
	a := NewAlmanac(cfg, nil)

	for i := 0; i < 5; i++ {
		_, err := a.Longitude(context.Background(), j2000, models.Mars)
		assert.ErrorIs(t, err, models.ErrEphemerisUnavailable)
	}
	assert.EqualValues(t, 2, calls.Load())
}

func TestAlmanac_RejectsMismatchedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AlmanacResponse{Body: "venus", Longitude: 10})
	}))
	defer srv.Close()

	a := NewAlmanac(almanacConfig(srv.URL), nil)
	_, err := a.Longitude(context.Background(), j2000, models.Mars)
	assert.ErrorIs(t, err, models.ErrEphemerisUnavailable)
}

func TestAlmanac_ZeroTime(t *testing.T) {
	a := NewAlmanac(almanacConfig("http://unused"), nil)
	_, err := a.Longitude(context.Background(), time.Time{}, models.Sun)
	assert.ErrorIs(t, err, models.ErrMalformedTimestamp)
}
