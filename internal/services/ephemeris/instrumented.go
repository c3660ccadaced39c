package ephemeris

import (
	"context"
	"time"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
)

// Instrumented records provider latency as "provider_<name>" and failures
// as "provider_<name>_error".
type Instrumented struct {
	next    domrepo.EphemerisProvider
	metrics domrepo.Metrics
	op      string
}

func NewInstrumented(next domrepo.EphemerisProvider, name string, metrics domrepo.Metrics) *Instrumented {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	return &Instrumented{next: next, metrics: metrics, op: "provider_" + name}
}

func (p *Instrumented) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	start := time.Now()
	lon, err := p.next.Longitude(ctx, t, body)
	p.metrics.RecordLatency(p.op, time.Since(start).Seconds())
	if err != nil {
		p.metrics.RecordError(p.op + "_error")
	}
	return lon, err
}
