package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"AstroSignal/internal/domain/models"
	domrepo "AstroSignal/internal/domain/repository"
)

// TimelineMessage is the payload written to the result topic.
type TimelineMessage struct {
	RequestID  string           `json:"request_id"`
	ComputedAt time.Time        `json:"computed_at"`
	Timeline   *models.Timeline `json:"timeline"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}, headers ...kafka.Header) error
	Close() error
}

// KafkaTimelinePublisher implements ResultPublisher on a Kafka topic.
type KafkaTimelinePublisher struct {
	producer publisher
	topic    string
	now      func() time.Time
}

var _ domrepo.ResultPublisher = (*KafkaTimelinePublisher)(nil)

// NewKafkaTimelinePublisher accepts *pkg/kafka.Producer or any compatible writer.
func NewKafkaTimelinePublisher(producer publisher, topic string) *KafkaTimelinePublisher {
	return &KafkaTimelinePublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaTimelinePublisher) PublishTimeline(ctx context.Context, requestID string, tl *models.Timeline) error {
	if tl == nil {
		return fmt.Errorf("nil timeline for request %q", requestID)
	}
	msg := TimelineMessage{RequestID: requestID, ComputedAt: p.now().UTC(), Timeline: tl}
	headers := []kafka.Header{{Key: "content-type", Value: []byte("application/json")}}
	if tl.Cancelled {
		headers = append(headers, kafka.Header{Key: "partial", Value: []byte("true")})
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(requestID), msg, headers...); err != nil {
		return fmt.Errorf("publish timeline %s: %w", requestID, err)
	}
	return nil
}

func (p *KafkaTimelinePublisher) Close() error {
	return p.producer.Close()
}
