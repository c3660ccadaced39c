package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	applogger "AstroSignal/pkg/logger"
	"AstroSignal/pkg/queue"
)

// TimelineJobType is the queue message type of asynchronous timelines.
const TimelineJobType = "timeline"

// TimelineJobService accepts timeline requests for background computation
// and reports their status.
type TimelineJobService struct {
	builder *ParamsBuilder
	queue   domrepo.JobQueue
	store   domrepo.JobStore
	job     *TimelineJob
	l       *applogger.Logger
	now     func() time.Time
}

// NewTimelineJobService wires a job whose results land in store.
func NewTimelineJobService(builder *ParamsBuilder, timeline *TimelineUseCase, q domrepo.JobQueue, store interface {
	domrepo.JobStore
	domrepo.ResultPublisher
}, metrics domrepo.Metrics, l *applogger.Logger) *TimelineJobService {
	if l == nil {
		l = applogger.Nop()
	}
	return &TimelineJobService{
		builder: builder,
		queue:   q,
		store:   store,
		job:     NewTimelineJob(builder, timeline, store, metrics, l),
		l:       l,
		now:     time.Now,
	}
}

// Submit validates req up front so malformed requests fail synchronously,
// records it as pending and enqueues it. Requests without an id get a UUID.
func (s *TimelineJobService) Submit(ctx context.Context, req TimelineRequest) (*models.JobStatus, error) {
	p, _, err := s.builder.Timeline(req)
	if err != nil {
		return nil, err
	}
	if err := s.job.timeline.Validate(&p); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	st := models.JobStatus{ID: req.RequestID, State: models.JobPending, Symbol: req.Symbol, SubmittedAt: s.now().UTC()}
	if err := s.store.Put(ctx, st); err != nil {
		return nil, err
	}
	if _, err := s.queue.Enqueue(ctx, TimelineJobType, req.RequestID, req); err != nil {
		st.State, st.Error = models.JobFailed, err.Error()
		_ = s.store.Put(ctx, st)
		return nil, fmt.Errorf("enqueue timeline: %w", err)
	}
	return &st, nil
}

// Status returns models.ErrJobNotFound for unknown ids.
func (s *TimelineJobService) Status(ctx context.Context, id string) (*models.JobStatus, error) {
	return s.store.Get(ctx, id)
}

// Type implements queue.Job.
func (s *TimelineJobService) Type() string { return TimelineJobType }

// Handle implements queue.Job.
func (s *TimelineJobService) Handle(ctx context.Context, msg queue.Message) error {
	err := s.job.Run(ctx, msg.Payload, msg.ID)
	if errors.Is(err, ErrRejectedRequest) {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	return err
}

// MarkFailed is the queue's dead-letter hook.
func (s *TimelineJobService) MarkFailed(ctx context.Context, msg queue.Message, cause error) {
	st, err := s.store.Get(ctx, msg.ID)
	if err != nil {
		st = &models.JobStatus{ID: msg.ID, SubmittedAt: msg.EnqueuedAt}
	}
	done := s.now().UTC()
	st.State = models.JobFailed
	st.CompletedAt = &done
	st.Attempts = msg.Attempts + 1
	st.Error = cause.Error()
	if err := s.store.Put(ctx, *st); err != nil {
		s.l.Error("mark job failed", applogger.String("id", msg.ID), applogger.Error(err))
	}
}

var _ queue.Job = (*TimelineJobService)(nil)
