package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/services/aspects"
	"AstroSignal/pkg/config"
)

func testEngine() config.EngineConfig {
	return config.EngineConfig{
		Step:        5 * time.Minute,
		Orb:         2.0,
		Policy:      aspects.PolicyBearishFirst,
		Key:         KeySentiment,
		Timezone:    "Asia/Kolkata",
		Conjunction: "include",
		Workers:     2,
	}
}

func TestParamsBuilder_TimelineDefaults(t *testing.T) {
	b, err := NewParamsBuilder(testEngine())
	require.NoError(t, err)

	p, loc, err := b.Timeline(TimelineRequest{Date: "2024-03-01"})
	require.NoError(t, err)

	assert.Equal(t, "Asia/Kolkata", loc.String())
	assert.Equal(t, 5*time.Minute, p.Step)
	assert.Equal(t, time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC), p.Start.UTC())
	assert.Equal(t, 24*time.Hour-5*time.Minute, p.End.Sub(p.Start))
	assert.Equal(t, models.ClassicalBodies(), p.Bodies)
	assert.Equal(t, models.Moon, p.Reference)
	assert.Equal(t, 2.0, p.Orb)
	assert.Equal(t, aspects.PolicyBearishFirst, p.Policy.Name())
	assert.Equal(t, KeySentiment, p.Key.Name())
	assert.Equal(t, aspects.ConjunctionInclude, p.Conjunction)
	assert.Equal(t, 2, p.Workers)
	assert.Len(t, p.Catalog, 5)
}

func TestParamsBuilder_TimelineOverrides(t *testing.T) {
	b, err := NewParamsBuilder(testEngine())
	require.NoError(t, err)
	orb := 0.0

	p, loc, err := b.Timeline(TimelineRequest{
		Start:     "2024-03-01T00:00:00Z",
		End:       "2024-03-01T06:00:00Z",
		Step:      "1h",
		Orb:       &orb,
		Bodies:    []string{"sun,mars"},
		Reference: "moon",
		Policy:    "moon-quadrant",
		Key:       "nakshatra",
		Timezone:  "UTC",
		Workers:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, time.UTC, loc)
	assert.Equal(t, time.Hour, p.Step)
	assert.Equal(t, 0.0, p.Orb)
	assert.Equal(t, []models.Body{models.Sun, models.Mars, models.Moon}, p.Bodies)
	assert.Equal(t, models.Moon, p.Reference)
	assert.Equal(t, aspects.PolicyMoonQuadrant, p.Policy.Name())
	assert.Equal(t, KeyNakshatra, p.Key.Name())
	assert.Equal(t, 4, p.Workers)
}

func TestParamsBuilder_WorkersClamped(t *testing.T) {
	eng := testEngine()
	eng.MaxWorkers = 8
	b, err := NewParamsBuilder(eng)
	require.NoError(t, err)

	p, _, err := b.Timeline(TimelineRequest{Date: "2024-03-01", Workers: 10000})
	require.NoError(t, err)
	assert.Equal(t, 8, p.Workers)

	eng.MaxWorkers = 0
	b, err = NewParamsBuilder(eng)
	require.NoError(t, err)
	p, _, err = b.Timeline(TimelineRequest{Date: "2024-03-01", Workers: 10000})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxWorkers, p.Workers)
}

func TestParamsBuilder_TimelineErrors(t *testing.T) {
	b, err := NewParamsBuilder(testEngine())
	require.NoError(t, err)

	tests := []struct {
		name string
		req  TimelineRequest
		want error
	}{
		{"bad step", TimelineRequest{Date: "2024-03-01", Step: "soon"}, models.ErrInvalidParams},
		{"negative step", TimelineRequest{Date: "2024-03-01", Step: "-5m"}, models.ErrInvalidParams},
		{"bad date", TimelineRequest{Date: "march"}, models.ErrMalformedTimestamp},
		{"missing end", TimelineRequest{Start: "2024-03-01"}, models.ErrMalformedTimestamp},
		{"unknown body", TimelineRequest{Date: "2024-03-01", Bodies: []string{"vulcan"}}, models.ErrUnknownBody},
		{"unknown policy", TimelineRequest{Date: "2024-03-01", Policy: "astrologer"}, models.ErrInvalidParams},
		{"unknown key", TimelineRequest{Date: "2024-03-01", Key: "house"}, models.ErrInvalidParams},
		{"bad tz", TimelineRequest{Date: "2024-03-01", Timezone: "Mars/Olympus"}, models.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := b.Timeline(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParamsBuilder_CatalogAndTriggers(t *testing.T) {
	eng := testEngine()
	eng.Policy = aspects.PolicyTriggerBodies
	eng.Triggers = map[string][]string{"bearish": {"saturn"}}
	eng.Catalog = append(eng.Catalog, struct {
		Name      string  `yaml:"name"`
		Angle     float64 `yaml:"angle"`
		Sentiment string  `yaml:"sentiment"`
	}{Name: "Opposition", Angle: 180, Sentiment: "volatile"})

	b, err := NewParamsBuilder(eng)
	require.NoError(t, err)
	require.Len(t, b.Catalog(), 1)
	assert.Equal(t, models.Volatile, b.Catalog()[0].Sentiment)

	eng.Catalog[0].Sentiment = "sideways"
	_, err = NewParamsBuilder(eng)
	assert.ErrorIs(t, err, models.ErrInvalidOrbOrCatalog)
}

func TestParamsBuilder_Snapshot(t *testing.T) {
	b, err := NewParamsBuilder(testEngine())
	require.NoError(t, err)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	p, err := b.Snapshot(SnapshotRequest{Bodies: []string{"sun", "moon"}})
	require.NoError(t, err)
	assert.True(t, p.Time.Equal(fixed))
	assert.Equal(t, []models.Body{models.Sun, models.Moon}, p.Bodies)

	p, err = b.Snapshot(SnapshotRequest{Time: "2024-03-01 17:30"})
	require.NoError(t, err)
	assert.True(t, p.Time.Equal(fixed), "17:30 IST is 12:00 UTC")

	_, err = b.Snapshot(SnapshotRequest{Time: "noon"})
	assert.ErrorIs(t, err, models.ErrMalformedTimestamp)
}
