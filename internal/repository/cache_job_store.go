package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
	"AstroSignal/pkg/cache"
)

// CacheJobStore keeps job statuses in a cache.Service with a TTL. It also
// serves as the ResultPublisher of queued jobs: publishing marks a job done.
type CacheJobStore struct {
	store  cache.Service
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ domrepo.JobStore        = (*CacheJobStore)(nil)
	_ domrepo.ResultPublisher = (*CacheJobStore)(nil)
)

func NewCacheJobStore(store cache.Service, ttl time.Duration) *CacheJobStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CacheJobStore{store: store, prefix: "job:timeline", ttl: ttl, now: time.Now}
}

func (s *CacheJobStore) key(id string) string { return cache.Key(s.prefix, id) }

func (s *CacheJobStore) Put(ctx context.Context, st models.JobStatus) error {
	if st.ID == "" {
		return fmt.Errorf("job id required")
	}
	if err := s.store.Set(ctx, s.key(st.ID), st, s.ttl); err != nil {
		return fmt.Errorf("store job %s: %w", st.ID, err)
	}
	return nil
}

func (s *CacheJobStore) Get(ctx context.Context, id string) (*models.JobStatus, error) {
	var st models.JobStatus
	if err := s.store.Get(ctx, s.key(id), &st); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, fmt.Errorf("%w: %s", models.ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	return &st, nil
}

// PublishTimeline stores the result and flips the job to done, keeping the
// submission metadata when present.
func (s *CacheJobStore) PublishTimeline(ctx context.Context, requestID string, tl *models.Timeline) error {
	if tl == nil {
		return fmt.Errorf("nil timeline for %s", requestID)
	}
	st, err := s.Get(ctx, requestID)
	if err != nil {
		if !errors.Is(err, models.ErrJobNotFound) {
			return err
		}
		st = &models.JobStatus{ID: requestID, SubmittedAt: s.now().UTC()}
	}
	done := s.now().UTC()
	st.State = models.JobDone
	st.CompletedAt = &done
	st.Error = ""
	st.Timeline = tl
	return s.Put(ctx, *st)
}

// Close leaves the underlying cache open; its owner closes it.
func (s *CacheJobStore) Close() error { return nil }
