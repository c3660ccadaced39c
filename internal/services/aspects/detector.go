package aspects

import (
	"fmt"
	"sort"
	"time"

	"AstroSignal/internal/domain/models"
)

// ConjunctionMode controls whether 0° catalog entries take part in detection.
type ConjunctionMode string

const (
	ConjunctionInclude ConjunctionMode = "include"
	ConjunctionExclude ConjunctionMode = "exclude"
)

// ParseConjunctionMode accepts "", "include" or "exclude".
func ParseConjunctionMode(s string) (ConjunctionMode, error) {
	switch ConjunctionMode(s) {
	case "", ConjunctionInclude:
		return ConjunctionInclude, nil
	case ConjunctionExclude:
		return ConjunctionExclude, nil
	default:
		return "", fmt.Errorf("%w: conjunction mode %q", models.ErrInvalidOrbOrCatalog, s)
	}
}

type detectConfig struct {
	conjunction ConjunctionMode
	at          time.Time
}

// DetectOption configures DetectAspects.
type DetectOption func(*detectConfig)

// WithConjunction sets how 0° aspects are handled.
func WithConjunction(mode ConjunctionMode) DetectOption {
	return func(c *detectConfig) {
		if mode != "" {
			c.conjunction = mode
		}
	}
}

// WithTime stamps every match with the sample time.
func WithTime(t time.Time) DetectOption {
	return func(c *detectConfig) { c.at = t }
}

// ValidateOrb rejects negative or non-finite orbs.
func ValidateOrb(orb float64) error {
	if orb < 0 || orb != orb || orb > 180 {
		return fmt.Errorf("%w: orb %v", models.ErrInvalidOrbOrCatalog, orb)
	}
	return nil
}

// DetectAspects enumerates every unordered pair of distinct bodies and records
// each catalog aspect whose angle lies within orb of the pair's separation.
// A separation matching two misconfigured angles yields two matches.
//
// The result is sorted by body rank of A, then B, then aspect angle, so it
// does not depend on map iteration order.
func DetectAspects(longitudes map[models.Body]float64, catalog models.AspectCatalog, orb float64, opts ...DetectOption) []models.AspectMatch {
	cfg := detectConfig{conjunction: ConjunctionInclude}
	for _, opt := range opts {
		opt(&cfg)
	}

	bodies := make([]models.Body, 0, len(longitudes))
	for b := range longitudes {
		bodies = append(bodies, b)
	}
	sortBodies(bodies)

	var out []models.AspectMatch
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			p1, p2 := bodies[i], bodies[j]
			sep := CircularSeparation(longitudes[p1], longitudes[p2])
			for _, def := range catalog {
				if def.Angle == 0 && cfg.conjunction == ConjunctionExclude {
					continue
				}
				if !WithinOrb(sep, def.Angle, orb) {
					continue
				}
				out = append(out, models.AspectMatch{
					A:          p1,
					B:          p2,
					Aspect:     def,
					Separation: sep,
					Time:       cfg.at,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.A != b.A {
			return lessBody(a.A, b.A)
		}
		if a.B != b.B {
			return lessBody(a.B, b.B)
		}
		return a.Aspect.Angle < b.Aspect.Angle
	})
	return out
}

func sortBodies(bs []models.Body) {
	sort.Slice(bs, func(i, j int) bool { return lessBody(bs[i], bs[j]) })
}

// lessBody orders known bodies by rank and unknown ones after, by name.
func lessBody(a, b models.Body) bool {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra >= 0 && rb >= 0:
		return ra < rb
	case ra >= 0:
		return true
	case rb >= 0:
		return false
	default:
		return a < b
	}
}
