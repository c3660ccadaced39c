package models

import "time"

// BodyPosition is one body's longitude with its presentation labels.
type BodyPosition struct {
	Body          Body    `json:"body"`
	Longitude     float64 `json:"longitude"`
	Sign          string  `json:"sign"`
	SignLord      Body    `json:"sign_lord"`
	Nakshatra     string  `json:"nakshatra"`
	NakshatraLord Body    `json:"nakshatra_lord"`
}

// Snapshot is the aspect picture at a single instant.
type Snapshot struct {
	Time      time.Time         `json:"time"`
	Policy    string            `json:"policy"`
	Sentiment Sentiment         `json:"sentiment"`
	Positions []BodyPosition    `json:"positions"`
	Aspects   []AspectMatch     `json:"aspects"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// PositionOf labels a longitude.
func PositionOf(b Body, lon float64) BodyPosition {
	lon = wrap360(lon)
	return BodyPosition{
		Body:          b,
		Longitude:     lon,
		Sign:          SignOf(lon),
		SignLord:      SignLords[SignIndex(lon)],
		Nakshatra:     NakshatraOf(lon),
		NakshatraLord: NakshatraLordOf(lon),
	}
}
