package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	"AstroSignal/internal/services/aspects"
)

func fixedProvider(lons map[models.Body]float64) domrepo.EphemerisProvider {
	return domrepo.ProviderFunc(func(_ context.Context, _ time.Time, b models.Body) (float64, error) {
		lon, ok := lons[b]
		if !ok {
			return 0, errors.New("no data")
		}
		return lon, nil
	})
}

func TestGetSnapshot(t *testing.T) {
	uc := NewSnapshotUseCase(fixedProvider(map[models.Body]float64{
		models.Sun:    10,
		models.Moon:   70,
		models.Saturn: 100,
	}))

	snap, err := uc.GetSnapshot(context.Background(), SnapshotParams{
		Time:    t0,
		Bodies:  []models.Body{models.Sun, models.Moon, models.Saturn},
		Catalog: models.DefaultCatalog(),
		Orb:     2,
		Policy:  aspects.BearishFirst(),
	})
	require.NoError(t, err)

	require.Len(t, snap.Positions, 3)
	assert.Equal(t, models.Sun, snap.Positions[0].Body)
	assert.Equal(t, "Aries", snap.Positions[0].Sign)
	assert.Equal(t, models.Mars, snap.Positions[0].SignLord)
	// Sun-Moon sextile, Sun-Saturn square
	require.Len(t, snap.Aspects, 2)
	assert.Equal(t, models.Bearish, snap.Sentiment)
	assert.Nil(t, snap.Errors)
}

func TestGetSnapshot_PartialFailure(t *testing.T) {
	uc := NewSnapshotUseCase(fixedProvider(map[models.Body]float64{models.Sun: 10, models.Moon: 70}))

	snap, err := uc.GetSnapshot(context.Background(), SnapshotParams{
		Time:    t0,
		Bodies:  []models.Body{models.Sun, models.Moon, models.Pluto},
		Catalog: models.DefaultCatalog(),
		Orb:     2,
		Policy:  aspects.BullishFirst(),
	})
	require.NoError(t, err)

	assert.Len(t, snap.Positions, 2)
	assert.Contains(t, snap.Errors, "pluto")
	assert.Equal(t, models.Bullish, snap.Sentiment)
}

func TestGetSnapshot_AllFail(t *testing.T) {
	uc := NewSnapshotUseCase(fixedProvider(nil))

	_, err := uc.GetSnapshot(context.Background(), SnapshotParams{
		Time:    t0,
		Bodies:  []models.Body{models.Sun},
		Catalog: models.DefaultCatalog(),
		Orb:     2,
		Policy:  aspects.BullishFirst(),
	})
	assert.Error(t, err)
}

func TestGetSnapshot_AllFailReportsFirstBodyError(t *testing.T) {
	errSun, errMoon := errors.New("sun down"), errors.New("moon down")
	uc := NewSnapshotUseCase(domrepo.ProviderFunc(func(_ context.Context, _ time.Time, b models.Body) (float64, error) {
		if b == models.Sun {
			time.Sleep(5 * time.Millisecond)
			return 0, errSun
		}
		return 0, errMoon
	}))

	for i := 0; i < 5; i++ {
		_, err := uc.GetSnapshot(context.Background(), SnapshotParams{
			Time:    t0,
			Bodies:  []models.Body{models.Sun, models.Moon},
			Catalog: models.DefaultCatalog(),
			Orb:     2,
			Policy:  aspects.BullishFirst(),
		})
		require.ErrorIs(t, err, errSun)
	}
}

func TestGetSnapshot_MalformedTimestampPropagates(t *testing.T) {
	uc := NewSnapshotUseCase(domrepo.ProviderFunc(func(_ context.Context, _ time.Time, b models.Body) (float64, error) {
		if b == models.Mars {
			return 0, models.ErrMalformedTimestamp
		}
		return 10, nil
	}))

	snap, err := uc.GetSnapshot(context.Background(), SnapshotParams{
		Time:    t0,
		Bodies:  []models.Body{models.Sun, models.Mars},
		Catalog: models.DefaultCatalog(),
		Orb:     2,
		Policy:  aspects.BullishFirst(),
	})

	assert.Nil(t, snap)
	assert.ErrorIs(t, err, models.ErrMalformedTimestamp)
}
