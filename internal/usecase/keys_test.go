package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
)

func TestNewKeySelector(t *testing.T) {
	s := models.Sample{
		Sentiment:  models.Bearish,
		Longitudes: map[models.Body]float64{models.Moon: 45, models.Sun: 200},
	}

	k, err := NewKeySelector("", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearish", k.Key(s))

	k, err = NewKeySelector("nakshatra", "")
	require.NoError(t, err)
	assert.Equal(t, "Rohini|Bearish", k.Key(s))

	k, err = NewKeySelector("SIGN", models.Sun)
	require.NoError(t, err)
	assert.Equal(t, "Libra|Bearish", k.Key(s))

	_, err = NewKeySelector("tithi", "")
	assert.ErrorIs(t, err, models.ErrInvalidParams)
}

func TestKeySelectorMissingReference(t *testing.T) {
	s := models.Sample{Sentiment: models.Neutral, Longitudes: map[models.Body]float64{}}
	assert.Equal(t, "-|Neutral", SignKey{Body: models.Mars}.Key(s))
}
