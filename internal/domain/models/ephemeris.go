package models

import "time"

// EphemerisRow is one precomputed longitude.
type EphemerisRow struct {
	Body      Body      `json:"body"`
	Time      time.Time `json:"ts"`
	Longitude float64   `json:"longitude"`
	Source    string    `json:"source,omitempty"`
}
