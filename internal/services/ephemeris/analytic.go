package ephemeris

import (
	"context"
	"fmt"
	"math"
	"time"

	"AstroSignal/internal/domain/models"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// epoch is 2000 Jan 0.0 UT, day zero of the orbital element series.
var epoch = time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)

// Supported years keep the low-order element series inside their fit.
var (
	minTime = time.Date(1800, 1, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
)

// elements are osculating orbital elements in degrees (a in AU, or Earth
// radii for the Moon) at day d.
type elements struct {
	N, i, w, a, e, M float64
}

type elementFunc func(d float64) elements

var orbits = map[models.Body]elementFunc{
	models.Sun: func(d float64) elements {
		return elements{0, 0, 282.9404 + 4.70935e-5*d, 1.0, 0.016709 - 1.151e-9*d, 356.0470 + 0.9856002585*d}
	},
	models.Moon: func(d float64) elements {
		return elements{125.1228 - 0.0529538083*d, 5.1454, 318.0634 + 0.1643573223*d, 60.2666, 0.054900, 115.3654 + 13.0649929509*d}
	},
	models.Mercury: func(d float64) elements {
		return elements{48.3313 + 3.24587e-5*d, 7.0047 + 5.00e-8*d, 29.1241 + 1.01444e-5*d, 0.387098, 0.205635 + 5.59e-10*d, 168.6562 + 4.0923344368*d}
	},
	models.Venus: func(d float64) elements {
		return elements{76.6799 + 2.46590e-5*d, 3.3946 + 2.75e-8*d, 54.8910 + 1.38374e-5*d, 0.723330, 0.006773 - 1.302e-9*d, 48.0052 + 1.6021302244*d}
	},
	models.Mars: func(d float64) elements {
		return elements{49.5574 + 2.11081e-5*d, 1.8497 - 1.78e-8*d, 286.5016 + 2.92961e-5*d, 1.523688, 0.093405 + 2.516e-9*d, 18.6021 + 0.5240207766*d}
	},
	models.Jupiter: func(d float64) elements {
		return elements{100.4542 + 2.76854e-5*d, 1.3030 - 1.557e-7*d, 273.8777 + 1.64505e-5*d, 5.20256, 0.048498 + 4.469e-9*d, 19.8950 + 0.0830853001*d}
	},
	models.Saturn: func(d float64) elements {
		return elements{113.6634 + 2.38980e-5*d, 2.4886 - 1.081e-7*d, 339.3939 + 2.97661e-5*d, 9.55475, 0.055546 - 9.499e-9*d, 316.9670 + 0.0334442282*d}
	},
	models.Uranus: func(d float64) elements {
		return elements{74.0005 + 1.3978e-5*d, 0.7733 + 1.9e-8*d, 96.6612 + 3.0565e-5*d, 19.18171 - 1.55e-8*d, 0.047318 + 7.45e-9*d, 142.5905 + 0.011725806*d}
	},
	models.Neptune: func(d float64) elements {
		return elements{131.7806 + 3.0173e-5*d, 1.7700 - 2.55e-7*d, 272.8461 - 6.027e-6*d, 30.05826 + 3.313e-8*d, 0.008606 + 2.15e-9*d, 260.2471 + 0.005995147*d}
	},
}

// Analytic computes geocentric tropical ecliptic longitudes from mean
// orbital elements with the main perturbation terms. Accuracy is about one
// to two arc minutes for the planets and a few for the Moon, which is enough
// for degree-level orbs.
type Analytic struct{}

func NewAnalytic() *Analytic { return &Analytic{} }

func (a *Analytic) Name() string { return "analytic" }

func (a *Analytic) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if t.IsZero() {
		return 0, fmt.Errorf("%w: zero time", models.ErrMalformedTimestamp)
	}
	if t.Before(minTime) || !t.Before(maxTime) {
		return 0, fmt.Errorf("%w: %s outside %d-%d", models.ErrEphemerisUnavailable,
			t.UTC().Format(time.RFC3339), minTime.Year(), maxTime.Year())
	}
	d := dayNumber(t)

	switch body {
	case models.Sun:
		return sunLongitude(d), nil
	case models.Moon:
		return moonLongitude(d), nil
	case models.Rahu:
		return meanNode(d), nil
	case models.Ketu:
		return norm(meanNode(d) + 180), nil
	case models.Pluto:
		return geocentric(d, plutoHeliocentric(d)), nil
	}
	if _, ok := orbits[body]; !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrUnknownBody, body)
	}
	return geocentric(d, planetHeliocentric(d, body)), nil
}

// dayNumber is days since epoch, fractional.
func dayNumber(t time.Time) float64 {
	return t.Sub(epoch).Hours() / 24
}

func norm(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func sind(x float64) float64 { return math.Sin(x * deg2rad) }
func cosd(x float64) float64 { return math.Cos(x * deg2rad) }

// kepler solves M = E - e sin E, degrees in and out.
func kepler(M, e float64) float64 {
	M = norm(M)
	E := M + e*rad2deg*sind(M)*(1+e*cosd(M))
	for i := 0; i < 20; i++ {
		next := E - (E-e*rad2deg*sind(E)-M)/(1-e*cosd(E))
		if math.Abs(next-E) < 1e-7 {
			return next
		}
		E = next
	}
	return E
}

// anomaly returns true anomaly (deg) and distance from the element set.
func anomaly(el elements) (v, r float64) {
	E := kepler(el.M, el.e)
	xv := el.a * (cosd(E) - el.e)
	yv := el.a * math.Sqrt(1-el.e*el.e) * sind(E)
	return math.Atan2(yv, xv) * rad2deg, math.Hypot(xv, yv)
}

type vec3 struct{ x, y, z float64 }

func toEcliptic(el elements, v, r float64) vec3 {
	vw := v + el.w
	return vec3{
		x: r * (cosd(el.N)*cosd(vw) - sind(el.N)*sind(vw)*cosd(el.i)),
		y: r * (sind(el.N)*cosd(vw) + cosd(el.N)*sind(vw)*cosd(el.i)),
		z: r * sind(vw) * sind(el.i),
	}
}

func sunPosition(d float64) (lon, r float64) {
	el := orbits[models.Sun](d)
	v, r := anomaly(el)
	return norm(v + el.w), r
}

func sunLongitude(d float64) float64 {
	lon, _ := sunPosition(d)
	return lon
}

func meanNode(d float64) float64 {
	return norm(orbits[models.Moon](d).N)
}

func moonLongitude(d float64) float64 {
	el := orbits[models.Moon](d)
	v, r := anomaly(el)
	p := toEcliptic(el, v, r)
	lon := math.Atan2(p.y, p.x) * rad2deg

	sun := orbits[models.Sun](d)
	Ms, Mm := sun.M, el.M
	Ls := sun.M + sun.w
	Lm := el.M + el.w + el.N
	D := Lm - Ls
	F := Lm - el.N

	lon += -1.274*sind(Mm-2*D) +
		0.658*sind(2*D) -
		0.186*sind(Ms) -
		0.059*sind(2*Mm-2*D) -
		0.057*sind(Mm-2*D+Ms) +
		0.053*sind(Mm+2*D) +
		0.046*sind(2*D-Ms) +
		0.041*sind(Mm-Ms) -
		0.035*sind(D) -
		0.031*sind(Mm+Ms) -
		0.015*sind(2*F-2*D) +
		0.011*sind(Mm-4*D)
	return norm(lon)
}

func planetHeliocentric(d float64, body models.Body) vec3 {
	el := orbits[body](d)
	v, r := anomaly(el)
	p := toEcliptic(el, v, r)

	var dlon float64
	Mj := orbits[models.Jupiter](d).M
	Ms := orbits[models.Saturn](d).M
	Mu := orbits[models.Uranus](d).M
	switch body {
	case models.Jupiter:
		dlon = -0.332*sind(2*Mj-5*Ms-67.6) -
			0.056*sind(2*Mj-2*Ms+21) +
			0.042*sind(3*Mj-5*Ms+21) -
			0.036*sind(Mj-2*Ms) +
			0.022*cosd(Mj-Ms) +
			0.023*sind(2*Mj-3*Ms+52) -
			0.016*sind(Mj-5*Ms-69)
	case models.Saturn:
		dlon = 0.812*sind(2*Mj-5*Ms-67.6) -
			0.229*cosd(2*Mj-4*Ms-2) +
			0.119*sind(Mj-2*Ms-3) +
			0.046*sind(2*Mj-6*Ms-69) +
			0.014*sind(Mj-3*Ms+32)
	case models.Uranus:
		dlon = 0.040*sind(Ms-2*Mu+6) +
			0.035*sind(Ms-3*Mu+33) -
			0.015*sind(Mj-Mu+20)
	}
	if dlon == 0 {
		return p
	}
	lon := math.Atan2(p.y, p.x)*rad2deg + dlon
	lat := math.Atan2(p.z, math.Hypot(p.x, p.y)) * rad2deg
	return spherical(lon, lat, r)
}

// plutoHeliocentric uses a periodic fit valid roughly 1800-2200.
func plutoHeliocentric(d float64) vec3 {
	S := 50.03 + 0.033459652*d
	P := 238.95 + 0.003968789*d
	lon := 238.9508 + 0.00400703*d -
		19.799*sind(P) + 19.848*cosd(P) +
		0.897*sind(2*P) - 4.956*cosd(2*P) +
		0.610*sind(3*P) + 1.211*cosd(3*P) -
		0.341*sind(4*P) - 0.190*cosd(4*P) +
		0.128*sind(5*P) - 0.034*cosd(5*P) -
		0.038*sind(6*P) + 0.031*cosd(6*P) +
		0.020*sind(S-P) - 0.010*cosd(S-P)
	lat := -3.9082 -
		5.453*sind(P) - 14.975*cosd(P) +
		3.527*sind(2*P) + 2.157*cosd(2*P) -
		1.276*sind(3*P) + 0.249*cosd(3*P) +
		0.658*sind(4*P) + 0.609*cosd(4*P) -
		0.202*sind(5*P) - 0.093*cosd(5*P)
	r := 40.72 +
		6.68*sind(P) + 6.90*cosd(P) -
		1.18*sind(2*P) - 0.03*cosd(2*P) +
		0.15*sind(3*P) - 0.14*cosd(3*P)
	return spherical(lon, lat, r)
}

func spherical(lon, lat, r float64) vec3 {
	return vec3{
		x: r * cosd(lon) * cosd(lat),
		y: r * sind(lon) * cosd(lat),
		z: r * sind(lat),
	}
}

// geocentric shifts a heliocentric position to the Earth and returns its
// ecliptic longitude.
func geocentric(d float64, p vec3) float64 {
	lonSun, rSun := sunPosition(d)
	xg := p.x + rSun*cosd(lonSun)
	yg := p.y + rSun*sind(lonSun)
	return norm(math.Atan2(yg, xg) * rad2deg)
}
