package models

import "time"

// Sample is one evaluation point of the sampling loop.
type Sample struct {
	Time       time.Time
	Longitudes map[Body]float64
	Matches    []AspectMatch
	Sentiment  Sentiment
}

// TimelineEvent is emitted when the change key differs from the previous sample.
// End is the time of the last sample that still shared Key.
type TimelineEvent struct {
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
	Sentiment  Sentiment        `json:"sentiment"`
	Key        string           `json:"key"`
	Sign       string           `json:"sign,omitempty"`
	Nakshatra  string           `json:"nakshatra,omitempty"`
	Longitudes map[Body]float64 `json:"longitudes"`
	Aspects    []AspectMatch    `json:"aspects,omitempty"`
}

// SkippedSample records a sample dropped because the provider failed.
type SkippedSample struct {
	Time   time.Time `json:"time"`
	Body   Body      `json:"body"`
	Reason string    `json:"reason"`
}

// TimelineSummary mirrors the "best long / best short start" view.
type TimelineSummary struct {
	FirstBullish *time.Time        `json:"first_bullish,omitempty"`
	FirstBearish *time.Time        `json:"first_bearish,omitempty"`
	Counts       map[Sentiment]int `json:"counts"`
}

// Timeline is the result of one computation; the caller owns it.
type Timeline struct {
	Events    []TimelineEvent `json:"events"`
	Skipped   []SkippedSample `json:"skipped,omitempty"`
	Evaluated int             `json:"evaluated"`
	Cancelled bool            `json:"cancelled"`
	Warnings  []string        `json:"warnings,omitempty"`
	Summary   TimelineSummary `json:"summary"`
}

// Summarize computes the summary for a list of events.
func Summarize(events []TimelineEvent) TimelineSummary {
	s := TimelineSummary{Counts: make(map[Sentiment]int)}
	for i := range events {
		e := events[i]
		s.Counts[e.Sentiment]++
		switch e.Sentiment {
		case Bullish:
			if s.FirstBullish == nil {
				t := e.Start
				s.FirstBullish = &t
			}
		case Bearish:
			if s.FirstBearish == nil {
				t := e.Start
				s.FirstBearish = &t
			}
		}
	}
	return s
}
