package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 5*time.Minute, c.Engine.Step)
	assert.Equal(t, 2.0, c.Engine.Orb)
	assert.Equal(t, "bearish-first", c.Engine.Policy)
	assert.Equal(t, 16, c.Engine.MaxWorkers)
	assert.Equal(t, "analytic", c.Ephemeris.Backend)
	assert.Equal(t, "ephemeris_longitudes", c.Ephemeris.ClickHouse.Table)
	assert.Equal(t, "astrosignal:jobs", c.Jobs.KeyPrefix)
	assert.Equal(t, 24*time.Hour, c.Jobs.ResultTTL)
	assert.Equal(t, time.UTC, c.Location())
}

func TestLoad_ParsesSections(t *testing.T) {
	c, err := Load(writeConfig(t, `
environment: prod
engine:
  step: 15m
  orb: 1.5
  bodies: [sun, moon, saturn]
  timezone: Asia/Kolkata
  triggers:
    Bearish: [saturn]
ephemeris:
  backend: almanac
  almanac:
    url: http://almanac:9000
    rps: 20
kafka:
  enabled: true
  brokers: [kafka:9092]
  request_topic: timeline.requests
  result_topic: timeline.results
`))
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, c.Engine.Step)
	assert.Equal(t, 1.5, c.Engine.Orb)
	assert.Equal(t, []string{"sun", "moon", "saturn"}, c.Engine.Bodies)
	assert.Equal(t, []string{"saturn"}, c.Engine.Triggers["Bearish"])
	assert.Equal(t, "http://almanac:9000", c.Ephemeris.Almanac.URL)
	assert.Equal(t, 20.0, c.Ephemeris.Almanac.RPS)
	assert.Equal(t, "Asia/Kolkata", c.Location().String())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "engine:\n  orb: 1\n"},
		{"unknown backend", "environment: x\nephemeris:\n  backend: swiss\n"},
		{"almanac without url", "environment: x\nephemeris:\n  backend: almanac\n"},
		{"clickhouse without host", "environment: x\nephemeris:\n  backend: clickhouse\n"},
		{"negative orb", "environment: x\nengine:\n  orb: -1\n"},
		{"bad timezone", "environment: x\nengine:\n  timezone: Mars/Olympus\n"},
		{"redis cache without addr", "environment: x\nephemeris:\n  cache:\n    enabled: true\n    type: redis\n"},
		{"jobs without redis", "environment: x\njobs:\n  enabled: true\n"},
		{"kafka without topics", "environment: x\nkafka:\n  enabled: true\n  brokers: [k:9092]\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnv_Overrides(t *testing.T) {
	t.Setenv("ASTRO_EPHEMERIS_BACKEND", "almanac")
	t.Setenv("ALMANAC_URL", "http://env-almanac")
	t.Setenv("ASTRO_TIMEZONE", "Europe/Berlin")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("ASTRO_ORB", "3.5")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "almanac", c.Ephemeris.Backend)
	assert.Equal(t, "http://env-almanac", c.Ephemeris.Almanac.URL)
	assert.Equal(t, "Europe/Berlin", c.Engine.Timezone)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 3.5, c.Engine.Orb)
}

func TestDefault(t *testing.T) {
	t.Setenv("ASTRO_TIMEZONE", "Asia/Kolkata")

	c := Default()
	assert.Equal(t, "analytic", c.Ephemeris.Backend)
	assert.Equal(t, "tropical", c.Ephemeris.Zodiac)
	assert.Equal(t, "Asia/Kolkata", c.Engine.Timezone)
	assert.NoError(t, c.Validate())
}
