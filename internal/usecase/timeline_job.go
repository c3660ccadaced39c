package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	applogger "AstroSignal/pkg/logger"
)

// ErrRejectedRequest marks a job whose request can never succeed. Transports
// translate it into their own no-retry signal.
var ErrRejectedRequest = errors.New("rejected timeline request")

// TimelineJob computes one queued TimelineRequest and publishes the result.
// It is shared by the Kafka handler and the Redis queue job.
type TimelineJob struct {
	builder   *ParamsBuilder
	timeline  *TimelineUseCase
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
}

func NewTimelineJob(builder *ParamsBuilder, timeline *TimelineUseCase, publisher domrepo.ResultPublisher, metrics domrepo.Metrics, l *applogger.Logger) *TimelineJob {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &TimelineJob{builder: builder, timeline: timeline, publisher: publisher, metrics: metrics, l: l}
}

// Run decodes payload, computes and publishes. fallbackID is used when the
// request carries no id of its own.
func (j *TimelineJob) Run(ctx context.Context, payload []byte, fallbackID string) error {
	var req TimelineRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		j.metrics.RecordError("job_unmarshal")
		return fmt.Errorf("%w: decode request: %v", ErrRejectedRequest, err)
	}
	if req.RequestID == "" {
		req.RequestID = fallbackID
	}
	if req.RequestID == "" {
		j.metrics.RecordError("job_request_id")
		return fmt.Errorf("%w: request_id required", ErrRejectedRequest)
	}

	p, _, err := j.builder.Timeline(req)
	if err != nil {
		j.metrics.RecordError("job_params")
		return fmt.Errorf("%w: request %s: %v", ErrRejectedRequest, req.RequestID, err)
	}

	start := time.Now()
	tl, err := j.timeline.ComputeTimeline(ctx, p)
	if err != nil {
		j.metrics.RecordError("job_compute")
		if isRequestError(err) {
			return fmt.Errorf("%w: request %s: %v", ErrRejectedRequest, req.RequestID, err)
		}
		return fmt.Errorf("compute %s: %w", req.RequestID, err)
	}

	if err := j.publisher.PublishTimeline(ctx, req.RequestID, tl); err != nil {
		j.metrics.RecordError("job_publish")
		return err
	}
	j.l.Info("timeline job done",
		applogger.String("request_id", req.RequestID),
		applogger.String("symbol", req.Symbol),
		applogger.Int("events", len(tl.Events)),
		applogger.Int("skipped", len(tl.Skipped)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

// isRequestError reports errors a retry of the same request cannot fix.
func isRequestError(err error) bool {
	return errors.Is(err, models.ErrInvalidParams) ||
		errors.Is(err, models.ErrInvalidOrbOrCatalog) ||
		errors.Is(err, models.ErrUnknownBody) ||
		errors.Is(err, models.ErrMalformedTimestamp)
}
