package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"AstroSignal/internal/domain/models"
)

func TestInsertQuery(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("IST", 19800))
	q, args := insertQuery("astro.ephemeris_longitudes", []models.EphemerisRow{
		{Body: models.Moon, Time: ts, Longitude: 156.0},
		{Body: "", Time: ts, Longitude: 1},
		{Body: models.Sun, Time: ts, Longitude: 280.0, Source: "almanac"},
	})

	assert.True(t, strings.HasPrefix(q, "INSERT INTO astro.ephemeris_longitudes (body, ts, longitude, source) VALUES"))
	assert.Equal(t, 2, strings.Count(q, "(?, ?, ?, ?)"))
	assert.Len(t, args, 8)
	assert.Equal(t, "moon", args[0])
	assert.Equal(t, ts.UTC(), args[1])
	assert.Equal(t, "analytic", args[3])
	assert.Equal(t, "almanac", args[7])
}

func TestLookupQuery(t *testing.T) {
	q := lookupQuery("astro.ephemeris_longitudes")
	assert.Contains(t, q, "FROM astro.ephemeris_longitudes FINAL")
	assert.Contains(t, q, "ORDER BY ts DESC")
	assert.Equal(t, 3, strings.Count(q, "?"))
}
