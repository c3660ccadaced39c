package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
	pkgkafka "AstroSignal/pkg/kafka"
)

type fakePublisher struct {
	ids []string
	tls []*models.Timeline
	err error
}

func (f *fakePublisher) PublishTimeline(_ context.Context, id string, tl *models.Timeline) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	f.tls = append(f.tls, tl)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newTestJobHandler(t *testing.T, pub *fakePublisher) *KafkaTimelineHandler {
	t.Helper()
	eng := testEngine()
	eng.Timezone = "UTC"
	b, err := NewParamsBuilder(eng)
	require.NoError(t, err)
	return NewKafkaTimelineHandler("astro.timeline.requests", b, NewTimelineUseCase(sweepProvider(), nil), pub, nil, nil)
}

func TestKafkaTimelineHandler_PublishesResult(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestJobHandler(t, pub)
	assert.Equal(t, "astro.timeline.requests", h.Topic())

	body := []byte(`{"request_id":"job-1","start":"2024-03-01T00:00:00Z","end":"2024-03-02T01:00:00Z","step":"1h","bodies":["sun","moon"]}`)
	require.NoError(t, h.Handle(context.Background(), nil, body))

	require.Equal(t, []string{"job-1"}, pub.ids)
	tl := pub.tls[0]
	assert.Equal(t, 26, tl.Evaluated)
	require.Len(t, tl.Events, 3)
	assert.Equal(t, models.Bullish, tl.Events[1].Sentiment)
}

func TestKafkaTimelineHandler_RequestIDFromKey(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestJobHandler(t, pub)

	body := []byte(`{"start":"2024-03-01T00:00:00Z","end":"2024-03-01T00:00:00Z","bodies":["sun","moon"]}`)
	require.NoError(t, h.Handle(context.Background(), []byte("from-key"), body))
	assert.Equal(t, []string{"from-key"}, pub.ids)
}

func TestKafkaTimelineHandler_PermanentFailures(t *testing.T) {
	h := newTestJobHandler(t, &fakePublisher{})

	for name, body := range map[string]string{
		"not json":     `{`,
		"no id":        `{"date":"2024-03-01"}`,
		"unknown body": `{"request_id":"x","date":"2024-03-01","bodies":["vulcan"]}`,
		"negative orb": `{"request_id":"x","date":"2024-03-01","orb":-1}`,
	} {
		t.Run(name, func(t *testing.T) {
			err := h.Handle(context.Background(), nil, []byte(body))
			assert.ErrorIs(t, err, pkgkafka.ErrPermanent)
		})
	}
}

func TestKafkaTimelineHandler_PublishErrorIsRetryable(t *testing.T) {
	h := newTestJobHandler(t, &fakePublisher{err: errors.New("broker down")})

	body := []byte(`{"request_id":"job-2","start":"2024-03-01T00:00:00Z","end":"2024-03-01T02:00:00Z","step":"1h","bodies":["sun","moon"]}`)
	err := h.Handle(context.Background(), nil, body)
	require.Error(t, err)
	assert.NotErrorIs(t, err, pkgkafka.ErrPermanent)
}
