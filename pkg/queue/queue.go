package queue

import (
	"encoding/json"
	"time"
)

// Config contains the configuration for the queue.
type Config struct {
	Workers     int           // consumer goroutines; 0 means enqueue only
	RetryLimit  int           // attempts after the first failure
	RetryDelay  time.Duration // base delay, doubled per attempt
	PollTimeout time.Duration // BRPOP block time
	KeyPrefix   string
}

func (c *Config) applyDefaults() {
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "astrosignal:queue"
	}
}

// Message is the envelope stored in Redis.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// retryDelay doubles the base delay per attempt, capped at 32x.
func (c *Config) retryDelay(attempts int) time.Duration {
	if attempts > 5 {
		attempts = 5
	}
	return c.RetryDelay << attempts
}
