package repository

import (
	"context"
	"time"

	"AstroSignal/internal/domain/models"
)

// EphemerisProvider returns a body's ecliptic longitude in degrees [0,360).
// Implementations wrap failures in models.ErrEphemerisUnavailable.
type EphemerisProvider interface {
	Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error)
}

// ProviderFunc adapts a plain function to EphemerisProvider.
type ProviderFunc func(ctx context.Context, t time.Time, body models.Body) (float64, error)

func (f ProviderFunc) Longitude(ctx context.Context, t time.Time, body models.Body) (float64, error) {
	return f(ctx, t, body)
}

// ResultPublisher delivers computed timelines to an outbound channel.
type ResultPublisher interface {
	PublishTimeline(ctx context.Context, requestID string, tl *models.Timeline) error
	Close() error
}

type Metrics interface {
	RecordSample(policy string)
	RecordSkip(reason string)
	RecordEvents(policy string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordSample(string)           {}
func (NopMetrics) RecordSkip(string)             {}
func (NopMetrics) RecordEvents(string, int)      {}
func (NopMetrics) RecordError(string)            {}
func (NopMetrics) RecordLatency(string, float64) {}

// JobStore keeps the status of asynchronous timeline jobs.
type JobStore interface {
	Put(ctx context.Context, st models.JobStatus) error
	// Get returns models.ErrJobNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*models.JobStatus, error)
}

// JobQueue accepts work for background processing.
type JobQueue interface {
	Enqueue(ctx context.Context, msgType, id string, payload interface{}) (string, error)
}
