package models

// TimelineQuery is bound from GET /api/timeline.
type TimelineQuery struct {
	Symbol      string `query:"symbol" json:"symbol" validate:"omitempty,max=32"`
	Date        string `query:"date" json:"date"`
	Start       string `query:"start" json:"start" validate:"required_with=End"`
	End         string `query:"end" json:"end" validate:"required_with=Start"`
	Step        string `query:"step" json:"step"`
	Orb         string `query:"orb" json:"orb" validate:"omitempty,numeric"`
	Bodies      string `query:"bodies" json:"bodies"`
	Policy      string `query:"policy" json:"policy" validate:"omitempty,oneof=bearish-first bullish-first trigger-bodies moon-quadrant"`
	Key         string `query:"key" json:"key" validate:"omitempty,oneof=sentiment nakshatra sign"`
	Reference   string `query:"reference" json:"reference"`
	TZ          string `query:"tz" json:"tz" validate:"omitempty,timezone"`
	Conjunction string `query:"conjunction" json:"conjunction" validate:"omitempty,oneof=include exclude"`
	Workers     int    `query:"workers" json:"workers" validate:"gte=0,lte=64"`
	Format      string `query:"format" json:"format" default:"full" validate:"oneof=full table"`
}

// AspectsQuery is bound from GET /api/aspects.
type AspectsQuery struct {
	Time        string `query:"time" json:"time"`
	Bodies      string `query:"bodies" json:"bodies"`
	Orb         string `query:"orb" json:"orb" validate:"omitempty,numeric"`
	Policy      string `query:"policy" json:"policy" validate:"omitempty,oneof=bearish-first bullish-first trigger-bodies moon-quadrant"`
	Reference   string `query:"reference" json:"reference"`
	TZ          string `query:"tz" json:"tz" validate:"omitempty,timezone"`
	Conjunction string `query:"conjunction" json:"conjunction" validate:"omitempty,oneof=include exclude"`
}
