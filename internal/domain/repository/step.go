package repository

import (
	"fmt"
	"time"
)

// Step is the sampling resolution of a timeline.
type Step string

const (
	Step1m  Step = "1m"
	Step5m  Step = "5m"
	Step10m Step = "10m"
	Step15m Step = "15m"
	Step30m Step = "30m"
	Step1h  Step = "1h"
)

// IsValidStep returns true if s is a supported step.
func IsValidStep(s Step) bool {
	switch s {
	case Step1m, Step5m, Step10m, Step15m, Step30m, Step1h:
		return true
	default:
		return false
	}
}

// DefaultStep returns the default sampling step.
func DefaultStep() Step { return Step5m }

// Duration converts a supported step to its duration.
func (s Step) Duration() (time.Duration, error) {
	if !IsValidStep(s) {
		return 0, fmt.Errorf("unsupported step: %s", s)
	}
	return time.ParseDuration(string(s))
}

// NormalizeStep converts raw string to a valid step (or default).
func NormalizeStep(raw string) Step {
	if raw == "" {
		return DefaultStep()
	}
	s := Step(raw)
	if IsValidStep(s) {
		return s
	}
	return DefaultStep()
}
