package usecase

import (
	"fmt"
	"strings"
	"time"

	"AstroSignal/internal/domain/models"
	"AstroSignal/internal/services/aspects"
	"AstroSignal/pkg/config"
	"AstroSignal/pkg/util"
)

// DefaultMaxWorkers caps request worker counts when the engine sets no limit.
const DefaultMaxWorkers = 16

// TimelineRequest is the transport-neutral form of a timeline query, shared
// by the HTTP API, the websocket endpoint, Kafka jobs and the CLI.
// Empty fields fall back to the engine configuration.
type TimelineRequest struct {
	RequestID   string   `json:"request_id,omitempty"`
	Symbol      string   `json:"symbol,omitempty"`
	Date        string   `json:"date,omitempty"` // whole local day, alternative to start/end
	Start       string   `json:"start,omitempty"`
	End         string   `json:"end,omitempty"`
	Step        string   `json:"step,omitempty"`
	Orb         *float64 `json:"orb,omitempty"`
	Bodies      []string `json:"bodies,omitempty"`
	Policy      string   `json:"policy,omitempty"`
	Key         string   `json:"key,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	Timezone    string   `json:"tz,omitempty"`
	Conjunction string   `json:"conjunction,omitempty"`
	Workers     int      `json:"workers,omitempty"`
}

// SnapshotRequest is the transport-neutral form of an instant query.
type SnapshotRequest struct {
	Time        string   `json:"time"`
	Bodies      []string `json:"bodies,omitempty"`
	Orb         *float64 `json:"orb,omitempty"`
	Policy      string   `json:"policy,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	Timezone    string   `json:"tz,omitempty"`
	Conjunction string   `json:"conjunction,omitempty"`
}

// ParamsBuilder turns requests into validated-shape parameters using the
// engine configuration for anything the request leaves out.
type ParamsBuilder struct {
	engine   config.EngineConfig
	catalog  models.AspectCatalog
	triggers map[models.Sentiment][]models.Body
	loc      *time.Location
	now      func() time.Time
}

// NewParamsBuilder parses the configured catalog and trigger lists once.
func NewParamsBuilder(engine config.EngineConfig) (*ParamsBuilder, error) {
	b := &ParamsBuilder{engine: engine, catalog: models.DefaultCatalog(), loc: time.UTC, now: time.Now}

	if len(engine.Catalog) > 0 {
		cat := make(models.AspectCatalog, 0, len(engine.Catalog))
		for _, c := range engine.Catalog {
			s, err := models.ParseSentiment(c.Sentiment)
			if err != nil {
				return nil, fmt.Errorf("%w: catalog entry %q: %v", models.ErrInvalidOrbOrCatalog, c.Name, err)
			}
			cat = append(cat, models.AspectDefinition{Name: c.Name, Angle: c.Angle, Sentiment: s})
		}
		if err := cat.Validate(); err != nil {
			return nil, err
		}
		b.catalog = cat
	}

	if len(engine.Triggers) > 0 {
		b.triggers = make(map[models.Sentiment][]models.Body, len(engine.Triggers))
		for class, names := range engine.Triggers {
			s, err := models.ParseSentiment(class)
			if err != nil {
				return nil, fmt.Errorf("%w: triggers: %v", models.ErrInvalidParams, err)
			}
			bodies, err := models.ParseBodies(names)
			if err != nil {
				return nil, err
			}
			b.triggers[s] = bodies
		}
	}

	if engine.Timezone != "" {
		loc, err := time.LoadLocation(engine.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%w: timezone %q", models.ErrInvalidParams, engine.Timezone)
		}
		b.loc = loc
	}
	return b, nil
}

// Catalog returns a copy of the active aspect catalog.
func (b *ParamsBuilder) Catalog() models.AspectCatalog {
	out := make(models.AspectCatalog, len(b.catalog))
	copy(out, b.catalog)
	return out
}

// Location returns the default display timezone.
func (b *ParamsBuilder) Location() *time.Location { return b.loc }

// Timeline builds TimelineParams plus the location the request asked for.
// When neither date nor start is given the current local day is used.
func (b *ParamsBuilder) Timeline(req TimelineRequest) (TimelineParams, *time.Location, error) {
	var p TimelineParams

	loc, err := b.location(req.Timezone)
	if err != nil {
		return p, nil, err
	}
	step := b.engine.Step
	if req.Step != "" {
		step, err = time.ParseDuration(req.Step)
		if err != nil || step <= 0 {
			return p, nil, fmt.Errorf("%w: step %q", models.ErrInvalidParams, req.Step)
		}
	}

	switch {
	case req.Start != "" || req.End != "":
		if p.Start, err = parseInstant(req.Start, loc, "start"); err != nil {
			return p, nil, err
		}
		if p.End, err = parseInstant(req.End, loc, "end"); err != nil {
			return p, nil, err
		}
	case req.Date != "":
		day, ok := util.ParseTimeIn(req.Date, loc)
		if !ok {
			return p, nil, fmt.Errorf("%w: date %q", models.ErrMalformedTimestamp, req.Date)
		}
		p.Start, p.End = util.DayBounds(day, loc, step)
	default:
		p.Start, p.End = util.DayBounds(b.now(), loc, step)
	}

	bodies, ref, err := b.bodies(req.Bodies, req.Reference)
	if err != nil {
		return p, nil, err
	}
	policy, err := aspects.NewPolicy(pick(req.Policy, b.engine.Policy), aspects.PolicyOptions{Triggers: b.triggers, Reference: ref})
	if err != nil {
		return p, nil, err
	}
	key, err := NewKeySelector(pick(req.Key, b.engine.Key), ref)
	if err != nil {
		return p, nil, err
	}
	conj, err := aspects.ParseConjunctionMode(pick(req.Conjunction, b.engine.Conjunction))
	if err != nil {
		return p, nil, err
	}

	p.Step = step
	p.Bodies = bodies
	p.Catalog = b.Catalog()
	p.Orb = b.orb(req.Orb)
	p.Policy = policy
	p.Key = key
	p.Conjunction = conj
	p.Reference = ref
	p.Workers = b.engine.Workers
	if req.Workers > 0 {
		p.Workers = req.Workers
	}
	if p.Workers > b.maxWorkers() {
		p.Workers = b.maxWorkers()
	}
	return p, loc, nil
}

// Snapshot builds SnapshotParams; an empty time means now.
func (b *ParamsBuilder) Snapshot(req SnapshotRequest) (SnapshotParams, error) {
	var p SnapshotParams

	loc, err := b.location(req.Timezone)
	if err != nil {
		return p, err
	}
	if req.Time == "" {
		p.Time = b.now().In(loc)
	} else if p.Time, err = parseInstant(req.Time, loc, "time"); err != nil {
		return p, err
	}

	bodies, ref, err := b.bodies(req.Bodies, req.Reference)
	if err != nil {
		return p, err
	}
	policy, err := aspects.NewPolicy(pick(req.Policy, b.engine.Policy), aspects.PolicyOptions{Triggers: b.triggers, Reference: ref})
	if err != nil {
		return p, err
	}
	conj, err := aspects.ParseConjunctionMode(pick(req.Conjunction, b.engine.Conjunction))
	if err != nil {
		return p, err
	}

	p.Bodies = bodies
	p.Catalog = b.Catalog()
	p.Orb = b.orb(req.Orb)
	p.Policy = policy
	p.Conjunction = conj
	return p, nil
}

func (b *ParamsBuilder) location(tz string) (*time.Location, error) {
	if tz == "" {
		return b.loc, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", models.ErrInvalidParams, tz)
	}
	return loc, nil
}

func (b *ParamsBuilder) maxWorkers() int {
	if b.engine.MaxWorkers > 0 {
		return b.engine.MaxWorkers
	}
	return DefaultMaxWorkers
}

func (b *ParamsBuilder) orb(req *float64) float64 {
	if req != nil {
		return *req
	}
	return b.engine.Orb
}

// bodies resolves the body list and the reference body. A reference that is
// not in the list is appended so its sign and nakshatra can be reported.
func (b *ParamsBuilder) bodies(names []string, reference string) ([]models.Body, models.Body, error) {
	if len(names) == 1 && strings.Contains(names[0], ",") {
		names = util.SplitList(names[0])
	}
	if len(names) == 0 {
		names = b.engine.Bodies
	}
	var bodies []models.Body
	if len(names) == 0 {
		bodies = models.ClassicalBodies()
	} else {
		var err error
		if bodies, err = models.ParseBodies(names); err != nil {
			return nil, "", err
		}
	}

	refName := pick(reference, b.engine.Reference)
	if refName == "" {
		return bodies, referenceBody("", bodies), nil
	}
	ref, err := models.ParseBody(refName)
	if err != nil {
		return nil, "", err
	}
	for _, x := range bodies {
		if x == ref {
			return bodies, ref, nil
		}
	}
	return append(bodies, ref), ref, nil
}

func parseInstant(s string, loc *time.Location, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: %s required", models.ErrMalformedTimestamp, field)
	}
	t, ok := util.ParseTimeIn(s, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s %q", models.ErrMalformedTimestamp, field, s)
	}
	return t, nil
}

func pick(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}
