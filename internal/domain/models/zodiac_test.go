package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignOf(t *testing.T) {
	assert.Equal(t, "Aries", SignOf(0))
	assert.Equal(t, "Aries", SignOf(360))
	assert.Equal(t, "Taurus", SignOf(30))
	assert.Equal(t, "Pisces", SignOf(359.99))
	assert.Equal(t, "Pisces", SignOf(-0.5))
}

func TestNakshatraOf(t *testing.T) {
	assert.Equal(t, "Ashwini", NakshatraOf(0))
	assert.Equal(t, "Bharani", NakshatraOf(13.34))
	assert.Equal(t, "Revati", NakshatraOf(359.9))
	assert.Equal(t, Ketu, NakshatraLordOf(0))
	assert.Equal(t, Mercury, NakshatraLordOf(359.9))
}
