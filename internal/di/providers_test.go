package di

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/domain/repository"
	"AstroSignal/internal/usecase"
	"AstroSignal/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("ASTRO_EPHEMERIS_BACKEND", "")
	cfg := config.Default()
	cfg.Log.Output = "stderr"
	cfg.Log.Level = "error"
	return cfg
}

func TestInitializeEngine_Defaults(t *testing.T) {
	eng, err := InitializeEngine(testConfig(t))
	require.NoError(t, err)
	defer eng.Close()

	p, err := eng.Builder.Snapshot(usecase.SnapshotRequest{Time: "2000-01-01T12:00:00Z", Bodies: []string{"sun", "moon"}})
	require.NoError(t, err)
	snap, err := eng.Snapshot.GetSnapshot(context.Background(), p)
	require.NoError(t, err)

	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "Capricorn", snap.Positions[0].Sign)
	assert.Equal(t, "Scorpio", snap.Positions[1].Sign)
}

func TestProviders_DisabledInfrastructure(t *testing.T) {
	cfg := testConfig(t)

	assert.IsType(t, repository.NopMetrics{}, ProvideMetrics(cfg))

	ch, err := ProvideClickHouseClient(cfg)
	require.NoError(t, err)
	assert.Nil(t, ch)

	store, err := ProvideCacheStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)

	rc, err := ProvideJobRedis(cfg)
	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.Nil(t, ProvideJobQueue(cfg, rc, nil))
	assert.Nil(t, ProvideJobStore(cfg, rc))
	assert.Nil(t, ProvideTimelineJobService(nil, nil, nil, nil, nil, nil))
	assert.Nil(t, ProvideJobsHandler(nil, nil, nil))

	producer, err := ProvideKafkaProducer(cfg)
	require.NoError(t, err)
	assert.Nil(t, producer)
	assert.Nil(t, ProvideResultPublisher(producer, cfg))
	assert.Nil(t, ProvideRateLimiter(cfg))
}

func TestProvideEphemerisProvider_Sidereal(t *testing.T) {
	cfg := testConfig(t)
	l, err := ProvideLogger(cfg)
	require.NoError(t, err)
	at := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

	tropical, err := ProvideEphemerisProvider(cfg, nil, nil, repository.NopMetrics{}, l)
	require.NoError(t, err)
	cfg.Ephemeris.Zodiac = "sidereal"
	sidereal, err := ProvideEphemerisProvider(cfg, nil, nil, repository.NopMetrics{}, l)
	require.NoError(t, err)

	trop, err := tropical.Longitude(context.Background(), at, models.Sun)
	require.NoError(t, err)
	sid, err := sidereal.Longitude(context.Background(), at, models.Sun)
	require.NoError(t, err)
	assert.InDelta(t, 23.85, trop-sid, 0.1, "Lahiri ayanamsa near J2000")

	cfg.Ephemeris.Backend = "clickhouse"
	_, err = ProvideEphemerisProvider(cfg, nil, nil, repository.NopMetrics{}, l)
	assert.Error(t, err)
}
