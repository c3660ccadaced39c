package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AstroSignal/internal/domain/models"
)

type capturePublisher struct {
	topic   string
	key     []byte
	value   interface{}
	headers []kafka.Header
	err     error
	closed  bool
}

func (c *capturePublisher) Publish(_ context.Context, topic string, key []byte, value interface{}, headers ...kafka.Header) error {
	c.topic, c.key, c.value, c.headers = topic, key, value, headers
	return c.err
}

func (c *capturePublisher) Close() error {
	c.closed = true
	return nil
}

func TestKafkaTimelinePublisher_Publish(t *testing.T) {
	cp := &capturePublisher{}
	p := NewKafkaTimelinePublisher(cp, "astro.timeline.results")
	fixed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	tl := &models.Timeline{Evaluated: 3, Cancelled: true}
	require.NoError(t, p.PublishTimeline(context.Background(), "req-42", tl))

	assert.Equal(t, "astro.timeline.results", cp.topic)
	assert.Equal(t, []byte("req-42"), cp.key)
	msg, ok := cp.value.(TimelineMessage)
	require.True(t, ok)
	assert.Equal(t, "req-42", msg.RequestID)
	assert.Equal(t, fixed, msg.ComputedAt)
	assert.Same(t, tl, msg.Timeline)
	require.Len(t, cp.headers, 2)
	assert.Equal(t, "partial", cp.headers[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, cp.closed)
}

func TestKafkaTimelinePublisher_Errors(t *testing.T) {
	cp := &capturePublisher{err: errors.New("broker down")}
	p := NewKafkaTimelinePublisher(cp, "results")

	assert.Error(t, p.PublishTimeline(context.Background(), "r", nil))

	err := p.PublishTimeline(context.Background(), "r", &models.Timeline{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
