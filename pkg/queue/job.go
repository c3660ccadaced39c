package queue

import (
	"context"
	"errors"
)

// ErrPermanent marks a job failure that retrying cannot fix. Such messages
// go straight to the dead-letter list.
var ErrPermanent = errors.New("permanent job failure")

// Job handles one message type.
type Job interface {
	// Type returns the message type the job handles.
	Type() string

	// Handle processes one message. Wrap ErrPermanent to skip retries.
	Handle(ctx context.Context, msg Message) error
}

// DeadLetterHook observes messages that exhausted their retries.
type DeadLetterHook func(ctx context.Context, msg Message, err error)
