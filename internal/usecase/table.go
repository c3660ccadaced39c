package usecase

import (
	"math"
	"time"

	"AstroSignal/internal/domain/models"
)

// TableRow is one change point in the compact view: when, where the
// reference body stood, and the new signal.
type TableRow struct {
	Time      time.Time        `json:"time"`
	Degree    float64          `json:"degree"`
	Signal    models.Sentiment `json:"signal"`
	Sign      string           `json:"sign,omitempty"`
	Nakshatra string           `json:"nakshatra,omitempty"`
}

// TimelineTable flattens events into rows with times in loc and the
// reference longitude rounded to two decimals.
func TimelineTable(tl *models.Timeline, ref models.Body, loc *time.Location) []TableRow {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]TableRow, 0, len(tl.Events))
	for _, e := range tl.Events {
		rows = append(rows, TableRow{
			Time:      e.Start.In(loc),
			Degree:    math.Round(e.Longitudes[ref]*100) / 100,
			Signal:    e.Sentiment,
			Sign:      e.Sign,
			Nakshatra: e.Nakshatra,
		})
	}
	return rows
}

// Localize returns a copy of tl with every timestamp moved to loc.
func Localize(tl *models.Timeline, loc *time.Location) *models.Timeline {
	if tl == nil || loc == nil {
		return tl
	}
	out := *tl
	out.Events = make([]models.TimelineEvent, len(tl.Events))
	for i, e := range tl.Events {
		e.Start = e.Start.In(loc)
		e.End = e.End.In(loc)
		out.Events[i] = e
	}
	out.Skipped = make([]models.SkippedSample, len(tl.Skipped))
	for i, s := range tl.Skipped {
		s.Time = s.Time.In(loc)
		out.Skipped[i] = s
	}
	if len(out.Skipped) == 0 {
		out.Skipped = nil
	}
	out.Summary = models.Summarize(out.Events)
	return &out
}
