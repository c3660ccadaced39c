package aspects

import (
	"fmt"
	"strings"

	"AstroSignal/internal/domain/models"
	domsvc "AstroSignal/internal/domain/service"
)

// Policy names accepted by NewPolicy.
const (
	PolicyBearishFirst  = "bearish-first"
	PolicyBullishFirst  = "bullish-first"
	PolicyTriggerBodies = "trigger-bodies"
	PolicyMoonQuadrant  = "moon-quadrant"
)

// PolicyNames lists the policies in the order they are documented.
func PolicyNames() []string {
	return []string{PolicyBearishFirst, PolicyBullishFirst, PolicyTriggerBodies, PolicyMoonQuadrant}
}

// PrecedencePolicy returns the first sentiment in Order that any match carries,
// or Default when none does.
type PrecedencePolicy struct {
	name    string
	Order   []models.Sentiment
	Default models.Sentiment
}

// NewPrecedencePolicy builds a named precedence policy.
func NewPrecedencePolicy(name string, def models.Sentiment, order ...models.Sentiment) *PrecedencePolicy {
	return &PrecedencePolicy{name: name, Order: order, Default: def}
}

// BearishFirst: any Bearish match wins, then Bullish, otherwise Neutral.
func BearishFirst() *PrecedencePolicy {
	return NewPrecedencePolicy(PolicyBearishFirst, models.Neutral, models.Bearish, models.Bullish)
}

// BullishFirst: any Bullish match wins, then Bearish, otherwise Neutral.
func BullishFirst() *PrecedencePolicy {
	return NewPrecedencePolicy(PolicyBullishFirst, models.Neutral, models.Bullish, models.Bearish)
}

func (p *PrecedencePolicy) Name() string { return p.name }

func (p *PrecedencePolicy) Resolve(s models.Sample) models.Sentiment {
	return p.resolve(s.Matches, func(models.AspectMatch, models.Sentiment) bool { return true })
}

func (p *PrecedencePolicy) resolve(matches []models.AspectMatch, triggers func(models.AspectMatch, models.Sentiment) bool) models.Sentiment {
	if len(matches) == 0 {
		return p.Default
	}
	present := make(map[models.Sentiment]bool, len(p.Order))
	for _, m := range matches {
		class := m.Aspect.Sentiment
		if triggers(m, class) {
			present[class] = true
		}
	}
	for _, s := range p.Order {
		if present[s] {
			return s
		}
	}
	return p.Default
}

// TriggerBodyPolicy restricts which bodies may trigger a sentiment class.
// A class without an allow-list triggers from any pair.
type TriggerBodyPolicy struct {
	base     *PrecedencePolicy
	triggers map[models.Sentiment]map[models.Body]struct{}
}

// DefaultTriggers: only Saturn/Mars trigger Bearish, only Jupiter/Venus trigger Bullish.
func DefaultTriggers() map[models.Sentiment][]models.Body {
	return map[models.Sentiment][]models.Body{
		models.Bearish: {models.Saturn, models.Mars},
		models.Bullish: {models.Jupiter, models.Venus},
	}
}

// NewTriggerBodyPolicy wraps base with per-class allow-lists.
func NewTriggerBodyPolicy(base *PrecedencePolicy, triggers map[models.Sentiment][]models.Body) *TriggerBodyPolicy {
	if base == nil {
		base = BearishFirst()
	}
	t := make(map[models.Sentiment]map[models.Body]struct{}, len(triggers))
	for s, bodies := range triggers {
		set := make(map[models.Body]struct{}, len(bodies))
		for _, b := range bodies {
			set[b] = struct{}{}
		}
		t[s] = set
	}
	return &TriggerBodyPolicy{base: base, triggers: t}
}

func (p *TriggerBodyPolicy) Name() string { return PolicyTriggerBodies }

func (p *TriggerBodyPolicy) Resolve(s models.Sample) models.Sentiment {
	return p.base.resolve(s.Matches, func(m models.AspectMatch, class models.Sentiment) bool {
		allowed, ok := p.triggers[class]
		if !ok {
			return true
		}
		_, a := allowed[m.A]
		_, b := allowed[m.B]
		return a || b
	})
}

// QuadrantPolicy labels a sample by the quadrant of a reference body's
// longitude and ignores aspects entirely.
type QuadrantPolicy struct {
	Reference models.Body
	Quadrants [4]models.Sentiment
}

// MoonQuadrant: [0,90) Bullish, [90,180) Bearish, [180,270) Volatile, [270,360) Bullish.
func MoonQuadrant() *QuadrantPolicy {
	return &QuadrantPolicy{
		Reference: models.Moon,
		Quadrants: [4]models.Sentiment{models.Bullish, models.Bearish, models.Volatile, models.Bullish},
	}
}

func (p *QuadrantPolicy) Name() string { return PolicyMoonQuadrant }

func (p *QuadrantPolicy) Resolve(s models.Sample) models.Sentiment {
	lon, ok := s.Longitudes[p.Reference]
	if !ok {
		return models.Neutral
	}
	q := int(Normalize(lon) / 90)
	if q > 3 {
		q = 3
	}
	return p.Quadrants[q]
}

// PolicyOptions carries the parameters some policies need.
type PolicyOptions struct {
	Triggers  map[models.Sentiment][]models.Body
	Reference models.Body
}

// NewPolicy builds a policy by name. An empty name selects bearish-first.
func NewPolicy(name string, opts PolicyOptions) (domsvc.SentimentPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyBearishFirst:
		return BearishFirst(), nil
	case PolicyBullishFirst:
		return BullishFirst(), nil
	case PolicyTriggerBodies:
		triggers := opts.Triggers
		if len(triggers) == 0 {
			triggers = DefaultTriggers()
		}
		return NewTriggerBodyPolicy(BearishFirst(), triggers), nil
	case PolicyMoonQuadrant:
		p := MoonQuadrant()
		if opts.Reference != "" {
			p.Reference = opts.Reference
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown sentiment policy %q", models.ErrInvalidParams, name)
	}
}

var (
	_ domsvc.SentimentPolicy = (*PrecedencePolicy)(nil)
	_ domsvc.SentimentPolicy = (*TriggerBodyPolicy)(nil)
	_ domsvc.SentimentPolicy = (*QuadrantPolicy)(nil)
)
