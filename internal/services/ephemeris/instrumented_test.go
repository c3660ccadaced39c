package ephemeris

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
)

type countingMetrics struct {
	domrepo.NopMetrics
	latency map[string]int
	errs    map[string]int
}

func (m *countingMetrics) RecordLatency(op string, _ float64) { m.latency[op]++ }
func (m *countingMetrics) RecordError(kind string)            { m.errs[kind]++ }

func TestInstrumented(t *testing.T) {
	m := &countingMetrics{latency: map[string]int{}, errs: map[string]int{}}
	fail := true
	next := domrepo.ProviderFunc(func(context.Context, time.Time, models.Body) (float64, error) {
		if fail {
			return 0, errors.New("down")
		}
		return 42, nil
	})
	p := NewInstrumented(next, "almanac", m)

	_, err := p.Longitude(context.Background(), time.Now(), models.Sun)
	assert.Error(t, err)
	fail = false
	lon, err := p.Longitude(context.Background(), time.Now(), models.Sun)
	assert.NoError(t, err)
	assert.Equal(t, 42.0, lon)

	assert.Equal(t, 2, m.latency["provider_almanac"])
	assert.Equal(t, 1, m.errs["provider_almanac_error"])
}
