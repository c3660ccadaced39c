package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	domsvc "AstroSignal/internal/domain/service"
	"AstroSignal/internal/services/aspects"
	applogger "AstroSignal/pkg/logger"
)

// DefaultMaxSamples bounds a single run (one year at 5 minute steps).
const DefaultMaxSamples = 366 * 24 * 12

// TimelineParams describes one computation over a closed interval.
type TimelineParams struct {
	Start       time.Time
	End         time.Time // inclusive
	Step        time.Duration
	Bodies      []models.Body
	Catalog     models.AspectCatalog
	Orb         float64
	Policy      domsvc.SentimentPolicy
	Key         domsvc.KeySelector // nil compares sentiment only
	Conjunction aspects.ConjunctionMode
	// Reference is the body whose sign and nakshatra label each event.
	// Defaults to the Moon when configured, otherwise the first body.
	Reference models.Body
	Workers   int
}

// TimelineUseCase samples the ephemeris over an interval and compacts the
// per-sample sentiment stream into change-point events.
type TimelineUseCase struct {
	provider   domrepo.EphemerisProvider
	metrics    domrepo.Metrics
	l          *applogger.Logger
	maxSamples int
}

func NewTimelineUseCase(provider domrepo.EphemerisProvider, metrics domrepo.Metrics) *TimelineUseCase {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &TimelineUseCase{provider: provider, metrics: metrics, maxSamples: DefaultMaxSamples}
}

// SetLogger injects a structured logger.
func (uc *TimelineUseCase) SetLogger(l *applogger.Logger) { uc.l = l }

// SetMaxSamples overrides the per-run sample bound.
func (uc *TimelineUseCase) SetMaxSamples(n int) {
	if n > 0 {
		uc.maxSamples = n
	}
}

type sampleResult struct {
	sample models.Sample
	key    string
	skip   *models.SkippedSample
	done   bool
}

var errSampleCancelled = errors.New("sample cancelled")

// Validate rejects parameters before any sampling starts.
func (uc *TimelineUseCase) Validate(p *TimelineParams) error {
	if err := aspects.ValidateOrb(p.Orb); err != nil {
		return err
	}
	if err := p.Catalog.Validate(); err != nil {
		return err
	}
	if _, err := aspects.ParseConjunctionMode(string(p.Conjunction)); err != nil {
		return err
	}
	if p.Policy == nil {
		return fmt.Errorf("%w: sentiment policy required", models.ErrInvalidParams)
	}
	if p.Step <= 0 {
		return fmt.Errorf("%w: step must be positive, got %s", models.ErrInvalidParams, p.Step)
	}
	if len(p.Bodies) == 0 {
		return fmt.Errorf("%w: at least one body required", models.ErrInvalidParams)
	}
	for _, b := range p.Bodies {
		if !b.Valid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownBody, b)
		}
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: start and end required", models.ErrMalformedTimestamp)
	}
	if !p.Start.After(p.End) {
		if n := p.End.Sub(p.Start)/p.Step + 1; int64(n) > int64(uc.maxSamples) {
			return fmt.Errorf("%w: %d samples exceeds limit %d", models.ErrInvalidParams, n, uc.maxSamples)
		}
	}
	return nil
}

// ComputeTimeline runs the sampling loop from Start to End inclusive.
//
// A provider failure skips the sample and is reported in Timeline.Skipped.
// Cancelling ctx returns the events of the completed prefix with Cancelled set.
// A start after end yields no events and a warning, not an error.
func (uc *TimelineUseCase) ComputeTimeline(ctx context.Context, p TimelineParams) (*models.Timeline, error) {
	if err := uc.Validate(&p); err != nil {
		uc.metrics.RecordError("timeline_validate")
		return nil, err
	}
	if p.Key == nil {
		p.Key = SentimentKey{}
	}
	p.Reference = referenceBody(p.Reference, p.Bodies)

	tl := &models.Timeline{Events: []models.TimelineEvent{}}
	if p.Start.After(p.End) {
		tl.Warnings = append(tl.Warnings, fmt.Sprintf("%v: start %s is after end %s",
			models.ErrInvalidInterval, p.Start.Format(time.RFC3339), p.End.Format(time.RFC3339)))
		tl.Summary = models.Summarize(nil)
		return tl, nil
	}

	start := time.Now()
	n := int(p.End.Sub(p.Start)/p.Step) + 1
	results := make([]sampleResult, n)

	var err error
	if p.Workers > 1 {
		err = uc.sampleParallel(ctx, p, results)
	} else {
		err = uc.sampleSequential(ctx, p, results)
	}
	if err != nil {
		uc.metrics.RecordError("timeline_abort")
		return nil, err
	}

	tl.Cancelled = !uc.compact(p, results, tl)
	tl.Summary = models.Summarize(tl.Events)

	uc.metrics.RecordEvents(p.Policy.Name(), len(tl.Events))
	uc.metrics.RecordLatency("timeline", time.Since(start).Seconds())
	if uc.l != nil {
		uc.l.Info("timeline computed",
			applogger.String("policy", p.Policy.Name()),
			applogger.String("key", p.Key.Name()),
			applogger.Int("samples", n),
			applogger.Int("evaluated", tl.Evaluated),
			applogger.Int("skipped", len(tl.Skipped)),
			applogger.Int("events", len(tl.Events)),
			applogger.Bool("cancelled", tl.Cancelled),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tl, nil
}

func (uc *TimelineUseCase) sampleSequential(ctx context.Context, p TimelineParams, results []sampleResult) error {
	for i := range results {
		if ctx.Err() != nil {
			return nil
		}
		r, err := uc.evaluate(ctx, p, p.Start.Add(time.Duration(i)*p.Step))
		if errors.Is(err, errSampleCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		results[i] = r
	}
	return nil
}

func (uc *TimelineUseCase) sampleParallel(ctx context.Context, p TimelineParams, results []sampleResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)
	for i := range results {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r, err := uc.evaluate(gctx, p, p.Start.Add(time.Duration(i)*p.Step))
			if errors.Is(err, errSampleCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			// each index is written by exactly one goroutine
			results[i] = r
			return nil
		})
	}
	return g.Wait()
}

// evaluate computes one sample. Provider failures become a skip; a malformed
// timestamp is returned as a fatal error.
func (uc *TimelineUseCase) evaluate(ctx context.Context, p TimelineParams, t time.Time) (sampleResult, error) {
	lons := make(map[models.Body]float64, len(p.Bodies))
	for _, b := range p.Bodies {
		lon, err := uc.provider.Longitude(ctx, t, b)
		if err == nil {
			lons[b] = aspects.Normalize(lon)
			continue
		}
		if errors.Is(err, models.ErrMalformedTimestamp) {
			return sampleResult{}, fmt.Errorf("sample %s body %s: %w", t.Format(time.RFC3339), b, err)
		}
		if ctx.Err() != nil {
			return sampleResult{}, errSampleCancelled
		}
		uc.metrics.RecordSkip(skipKind(err))
		if uc.l != nil {
			uc.l.Warn("sample skipped",
				applogger.String("time", t.Format(time.RFC3339)),
				applogger.String("body", string(b)),
				applogger.Error(err),
			)
		}
		return sampleResult{
			done: true,
			skip: &models.SkippedSample{Time: t, Body: b, Reason: err.Error()},
		}, nil
	}

	s := models.Sample{
		Time:       t,
		Longitudes: lons,
		Matches:    aspects.DetectAspects(lons, p.Catalog, p.Orb, aspects.WithConjunction(p.Conjunction), aspects.WithTime(t)),
	}
	s.Sentiment = p.Policy.Resolve(s)
	uc.metrics.RecordSample(p.Policy.Name())
	return sampleResult{sample: s, key: p.Key.Key(s), done: true}, nil
}

// compact walks results in timestamp order and keeps change points only.
// It reports false when it stopped at a sample that never completed.
func (uc *TimelineUseCase) compact(p TimelineParams, results []sampleResult, tl *models.Timeline) bool {
	var prevKey string
	for _, r := range results {
		if !r.done {
			// cancelled: only the contiguous completed prefix is reported
			return false
		}
		if r.skip != nil {
			tl.Skipped = append(tl.Skipped, *r.skip)
			continue
		}
		tl.Evaluated++
		if len(tl.Events) > 0 && r.key == prevKey {
			tl.Events[len(tl.Events)-1].End = r.sample.Time
			continue
		}
		tl.Events = append(tl.Events, newEvent(r, p.Reference))
		prevKey = r.key
	}
	return true
}

func newEvent(r sampleResult, ref models.Body) models.TimelineEvent {
	e := models.TimelineEvent{
		Start:      r.sample.Time,
		End:        r.sample.Time,
		Sentiment:  r.sample.Sentiment,
		Key:        r.key,
		Longitudes: r.sample.Longitudes,
		Aspects:    r.sample.Matches,
	}
	if lon, ok := r.sample.Longitudes[ref]; ok {
		e.Sign = models.SignOf(lon)
		e.Nakshatra = models.NakshatraOf(lon)
	}
	return e
}

func referenceBody(ref models.Body, bodies []models.Body) models.Body {
	for _, b := range bodies {
		if b == ref {
			return ref
		}
	}
	for _, b := range bodies {
		if b == models.Moon {
			return b
		}
	}
	return bodies[0]
}

func skipKind(err error) string {
	switch {
	case errors.Is(err, models.ErrEphemerisUnavailable):
		return "ephemeris_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "provider_timeout"
	default:
		return "provider_error"
	}
}
