package models

import (
	"fmt"
	"strings"
)

// Body identifies a solar-system object tracked by the engine.
type Body string

const (
	Sun     Body = "sun"
	Moon    Body = "moon"
	Mercury Body = "mercury"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
	Saturn  Body = "saturn"
	Uranus  Body = "uranus"
	Neptune Body = "neptune"
	Pluto   Body = "pluto"
	Rahu    Body = "rahu" // mean north lunar node
	Ketu    Body = "ketu" // south lunar node
)

var allBodies = [...]Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto, Rahu, Ketu}

// AllBodies returns every known body in canonical order.
func AllBodies() []Body {
	out := make([]Body, len(allBodies))
	copy(out, allBodies[:])
	return out
}

// ClassicalBodies returns the seven visible bodies used by default.
func ClassicalBodies() []Body {
	return []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn}
}

// Rank returns the canonical position of b, or -1 if b is unknown.
func (b Body) Rank() int {
	for i, x := range allBodies {
		if x == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b is a known body.
func (b Body) Valid() bool { return b.Rank() >= 0 }

func (b Body) String() string { return string(b) }

// Title returns the display name ("Moon", "Jupiter").
func (b Body) Title() string {
	if b == "" {
		return ""
	}
	return strings.ToUpper(string(b[:1])) + string(b[1:])
}

// ParseBody converts a case-insensitive identifier to a Body.
func ParseBody(s string) (Body, error) {
	b := Body(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBody, s)
	}
	return b, nil
}

// ParseBodies parses a list of identifiers, dropping duplicates while keeping order.
func ParseBodies(ss []string) ([]Body, error) {
	out := make([]Body, 0, len(ss))
	seen := make(map[Body]struct{}, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		b, err := ParseBody(s)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out, nil
}
