package aspects

import "math"

// Normalize maps any angle in degrees to [0,360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value plus 360 can round up to 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// CircularSeparation returns the minimal angular distance between two
// longitudes, in [0,180]. Inputs need not be normalized.
func CircularSeparation(a, b float64) float64 {
	d := math.Abs(Normalize(a) - Normalize(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// WithinOrb reports whether measured is within orb degrees of target.
// An orb of 0 accepts exact matches only.
func WithinOrb(measured, target, orb float64) bool {
	return math.Abs(measured-target) <= orb
}
