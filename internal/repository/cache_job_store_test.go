package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	"AstroSignal/pkg/cache"
)

func TestCacheJobStore_Lifecycle(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCacheJobStore(mc, time.Hour)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	ctx := context.Background()

	_, err := s.Get(ctx, "job-1")
	assert.ErrorIs(t, err, models.ErrJobNotFound)

	require.NoError(t, s.Put(ctx, models.JobStatus{ID: "job-1", State: models.JobPending, Symbol: "NIFTY", SubmittedAt: fixed.Add(-time.Minute)}))
	st, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, st.State)

	tl := &models.Timeline{Evaluated: 3, Events: []models.TimelineEvent{{Key: "Neutral", Sentiment: models.Neutral}}}
	require.NoError(t, s.PublishTimeline(ctx, "job-1", tl))

	st, err = s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, st.State)
	assert.Equal(t, "NIFTY", st.Symbol)
	require.NotNil(t, st.CompletedAt)
	assert.True(t, st.CompletedAt.Equal(fixed))
	require.NotNil(t, st.Timeline)
	assert.Equal(t, 3, st.Timeline.Evaluated)
}

func TestCacheJobStore_PublishWithoutSubmission(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	s := NewCacheJobStore(mc, 0)

	require.NoError(t, s.PublishTimeline(context.Background(), "orphan", &models.Timeline{}))
	st, err := s.Get(context.Background(), "orphan")
	require.NoError(t, err)
	assert.Equal(t, models.JobDone, st.State)

	assert.Error(t, s.PublishTimeline(context.Background(), "orphan", nil))
	assert.Error(t, s.Put(context.Background(), models.JobStatus{}))
}
