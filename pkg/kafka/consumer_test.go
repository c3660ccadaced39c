package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	fails int
	calls int
	err   error
	panic bool
}

func (h *stubHandler) Topic() string { return "timeline.requests" }

func (h *stubHandler) Handle(_ context.Context, _, _ []byte) error {
	h.calls++
	if h.panic {
		panic("boom")
	}
	if h.calls <= h.fails {
		return h.err
	}
	return nil
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func newTestConsumer(t *testing.T, opts ...ConsumerOption) *Consumer {
	t.Helper()
	opts = append([]ConsumerOption{
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, 2*time.Millisecond),
	}, opts...)
	c, err := NewConsumer(opts...)
	require.NoError(t, err)
	return c
}

func TestNewConsumer_RequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.Error(t, err)
}

func TestHandleWithRetry_RecoversAfterTransientErrors(t *testing.T) {
	c := newTestConsumer(t)
	h := &stubHandler{fails: 2, err: errors.New("transient")}

	attempts, err := c.handleWithRetry(h, kafka.Message{Topic: h.Topic()})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestHandleWithRetry_GivesUp(t *testing.T) {
	c := newTestConsumer(t)
	h := &stubHandler{fails: 10, err: errors.New("down")}

	attempts, err := c.handleWithRetry(h, kafka.Message{Topic: h.Topic()})

	assert.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestHandleWithRetry_PermanentAndPanicStopImmediately(t *testing.T) {
	c := newTestConsumer(t)

	h := &stubHandler{fails: 10, err: ErrPermanent}
	attempts, err := c.handleWithRetry(h, kafka.Message{})
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, attempts)

	p := &stubHandler{panic: true}
	attempts, err = c.handleWithRetry(p, kafka.Message{})
	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, attempts)
}

func TestProcess_FailedMessageGoesToDLQ(t *testing.T) {
	c := newTestConsumer(t, WithConsumerDLQ("timeline.dlq"))
	w := &recordingWriter{}
	c.dlq = w
	h := &stubHandler{fails: 10, err: ErrPermanent}
	c.RegisterHandler(h)

	c.process(kafka.Message{Topic: h.Topic(), Key: []byte("req-1"), Value: []byte(`{}`)})

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "timeline.dlq", w.msgs[0].Topic)
	assert.Equal(t, []byte("req-1"), w.msgs[0].Key)
	assert.Equal(t, "source_topic", w.msgs[0].Headers[0].Key)
}

func TestBackoffWithJitter(t *testing.T) {
	for attempt := 1; attempt < 70; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 200*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}
}

func TestPartitionLockIsStable(t *testing.T) {
	c := newTestConsumer(t)
	assert.Same(t, c.partitionLock("t", 1), c.partitionLock("t", 1))
	assert.NotSame(t, c.partitionLock("t", 1), c.partitionLock("t", 2))
}
