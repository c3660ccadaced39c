package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Sentiment is the deterministic label derived for a sample.
type Sentiment string

const (
	Bullish  Sentiment = "Bullish"
	Bearish  Sentiment = "Bearish"
	Neutral  Sentiment = "Neutral"
	Volatile Sentiment = "Volatile"
)

// ParseSentiment accepts any casing of the four labels.
func ParseSentiment(s string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return Bullish, nil
	case "bearish":
		return Bearish, nil
	case "neutral":
		return Neutral, nil
	case "volatile":
		return Volatile, nil
	default:
		return "", fmt.Errorf("unknown sentiment %q", s)
	}
}

// AspectDefinition is one canonical angle of the catalog.
type AspectDefinition struct {
	Name      string    `json:"name" yaml:"name"`
	Angle     float64   `json:"angle" yaml:"angle"`
	Sentiment Sentiment `json:"sentiment" yaml:"sentiment"`
}

// AspectCatalog is the static table of aspects a run detects.
type AspectCatalog []AspectDefinition

// DefaultCatalog returns the five major aspects.
// Conjunction is classed Neutral; callers who want it to trigger override the class.
func DefaultCatalog() AspectCatalog {
	return AspectCatalog{
		{Name: "Conjunction", Angle: 0, Sentiment: Neutral},
		{Name: "Sextile", Angle: 60, Sentiment: Bullish},
		{Name: "Square", Angle: 90, Sentiment: Bearish},
		{Name: "Trine", Angle: 120, Sentiment: Bullish},
		{Name: "Opposition", Angle: 180, Sentiment: Bearish},
	}
}

// Validate checks the catalog invariants: non-empty, angles unique and in [0,180].
func (c AspectCatalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("%w: empty aspect catalog", ErrInvalidOrbOrCatalog)
	}
	seen := make(map[float64]string, len(c))
	for _, a := range c {
		if math.IsNaN(a.Angle) || a.Angle < 0 || a.Angle > 180 {
			return fmt.Errorf("%w: aspect %s angle %.2f outside [0,180]", ErrInvalidOrbOrCatalog, a.Name, a.Angle)
		}
		if prev, ok := seen[a.Angle]; ok {
			return fmt.Errorf("%w: aspects %s and %s share angle %.2f", ErrInvalidOrbOrCatalog, prev, a.Name, a.Angle)
		}
		if _, err := ParseSentiment(string(a.Sentiment)); err != nil {
			return fmt.Errorf("%w: aspect %s: %v", ErrInvalidOrbOrCatalog, a.Name, err)
		}
		seen[a.Angle] = a.Name
	}
	return nil
}

// WithSentiment returns a copy of the catalog where the named aspect carries s.
func (c AspectCatalog) WithSentiment(name string, s Sentiment) AspectCatalog {
	out := make(AspectCatalog, len(c))
	copy(out, c)
	for i := range out {
		if strings.EqualFold(out[i].Name, name) {
			out[i].Sentiment = s
		}
	}
	return out
}

// AspectMatch is a detected aspect between two bodies at one sample.
type AspectMatch struct {
	A          Body             `json:"a"`
	B          Body             `json:"b"`
	Aspect     AspectDefinition `json:"aspect"`
	Separation float64          `json:"separation"`
	Time       time.Time        `json:"time"`
}

func (m AspectMatch) String() string {
	return fmt.Sprintf("%s %s %s (%.2f)", m.A.Title(), m.Aspect.Name, m.B.Title(), m.Separation)
}

// Involves reports whether b is one side of the match.
func (m AspectMatch) Involves(b Body) bool { return m.A == b || m.B == b }
