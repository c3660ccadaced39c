package aspects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[float64]float64{
		0:     0,
		360:   0,
		-30:   330,
		725:   5,
		-720:  0,
		359.5: 359.5,
	}
	for in, want := range cases {
		assert.InDelta(t, want, Normalize(in), 1e-9, "Normalize(%v)", in)
	}
	assert.Less(t, Normalize(-1e-15), 360.0)
}

func TestCircularSeparationProperties(t *testing.T) {
	pts := []float64{0, 0.5, 10, 59.9, 90, 179.99, 180, 181, 270, 359.9, 360, 420, -45}
	for _, a := range pts {
		for _, b := range pts {
			s := CircularSeparation(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 180.0)
			assert.InDelta(t, s, CircularSeparation(b, a), 1e-9, "symmetry %v %v", a, b)
			assert.InDelta(t, s, CircularSeparation(a+360, b), 1e-9, "wrap %v %v", a, b)
		}
		assert.Zero(t, CircularSeparation(a, a))
		assert.InDelta(t, CircularSeparation(0, a), CircularSeparation(360, a), 1e-9)
	}
}

func TestCircularSeparationAcrossZero(t *testing.T) {
	assert.InDelta(t, 20.0, CircularSeparation(350, 10), 1e-9)
	assert.InDelta(t, 180.0, CircularSeparation(90, 270), 1e-9)
	assert.InDelta(t, 170.0, CircularSeparation(0, 190), 1e-9)
}

func TestWithinOrb(t *testing.T) {
	assert.True(t, WithinOrb(61.5, 60, 2))
	assert.True(t, WithinOrb(62, 60, 2))
	assert.False(t, WithinOrb(62.01, 60, 2))
	assert.True(t, WithinOrb(60, 60, 0))
	assert.False(t, WithinOrb(60.001, 60, 0))
}
