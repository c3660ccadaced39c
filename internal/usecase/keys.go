package usecase

import (
	"fmt"
	"strings"

	"AstroSignal/internal/domain/models"
	domsvc "AstroSignal/internal/domain/service"
)

// Key selector names accepted by NewKeySelector.
const (
	KeySentiment = "sentiment"
	KeyNakshatra = "nakshatra"
	KeySign      = "sign"
)

// SentimentKey compares samples by resolved sentiment only.
type SentimentKey struct{}

func (SentimentKey) Name() string { return KeySentiment }

func (SentimentKey) Key(s models.Sample) string { return string(s.Sentiment) }

// NakshatraKey compares the (nakshatra of Body, sentiment) pair.
type NakshatraKey struct{ Body models.Body }

func (k NakshatraKey) Name() string { return KeyNakshatra }

func (k NakshatraKey) Key(s models.Sample) string {
	lon, ok := s.Longitudes[k.Body]
	if !ok {
		return "-|" + string(s.Sentiment)
	}
	return models.NakshatraOf(lon) + "|" + string(s.Sentiment)
}

// SignKey compares the (sign of Body, sentiment) pair.
type SignKey struct{ Body models.Body }

func (k SignKey) Name() string { return KeySign }

func (k SignKey) Key(s models.Sample) string {
	lon, ok := s.Longitudes[k.Body]
	if !ok {
		return "-|" + string(s.Sentiment)
	}
	return models.SignOf(lon) + "|" + string(s.Sentiment)
}

// NewKeySelector builds a selector by name; ref is the body discretized by
// the nakshatra and sign selectors.
func NewKeySelector(name string, ref models.Body) (domsvc.KeySelector, error) {
	if ref == "" {
		ref = models.Moon
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", KeySentiment:
		return SentimentKey{}, nil
	case KeyNakshatra:
		return NakshatraKey{Body: ref}, nil
	case KeySign:
		return SignKey{Body: ref}, nil
	default:
		return nil, fmt.Errorf("%w: unknown change key %q", models.ErrInvalidParams, name)
	}
}
