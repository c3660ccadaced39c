package ephemeris

import (
	"context"
	"time"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
)

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// LahiriAyanamsa approximates the Lahiri precession offset in degrees.
func LahiriAyanamsa(t time.Time) float64 {
	years := t.Sub(j2000).Hours() / (24 * 365.25)
	return 23.853 + years*50.2788/3600
}

// Sidereal converts a tropical provider to sidereal longitudes.
type Sidereal struct {
	next domrepo.EphemerisProvider
}

func NewSidereal(next domrepo.EphemerisProvider) *Sidereal {
	return &Sidereal{next: next}
}

func (s *Sidereal) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	lon, err := s.next.Longitude(ctx, t, body)
	if err != nil {
		return 0, err
	}
	return norm(lon - LahiriAyanamsa(t)), nil
}
