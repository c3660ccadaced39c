package usecase

import (
	"context"
	"errors"
	"fmt"

	domrepo "AstroSignal/internal/domain/repository"
	pkgkafka "AstroSignal/pkg/kafka"
	applogger "AstroSignal/pkg/logger"
)

// KafkaTimelineHandler consumes timeline requests and publishes results.
type KafkaTimelineHandler struct {
	topic string
	job   *TimelineJob
}

func NewKafkaTimelineHandler(topic string, builder *ParamsBuilder, timeline *TimelineUseCase, publisher domrepo.ResultPublisher, metrics domrepo.Metrics, l *applogger.Logger) *KafkaTimelineHandler {
	return &KafkaTimelineHandler{topic: topic, job: NewTimelineJob(builder, timeline, publisher, metrics, l)}
}

func (h *KafkaTimelineHandler) Topic() string { return h.topic }

// Handle decodes a TimelineRequest. The request id falls back to the message key.
// Bad requests are permanent failures and go straight to the DLQ.
func (h *KafkaTimelineHandler) Handle(ctx context.Context, key, value []byte) error {
	err := h.job.Run(ctx, value, string(key))
	if errors.Is(err, ErrRejectedRequest) {
		return fmt.Errorf("%w: %v", pkgkafka.ErrPermanent, err)
	}
	return err
}

var _ pkgkafka.MessageHandler = (*KafkaTimelineHandler)(nil)
