package service

import "AstroSignal/internal/domain/models"

// SentimentPolicy collapses one sample to a single label. It never fails;
// a sample without matches resolves to the policy default.
type SentimentPolicy interface {
	Name() string
	Resolve(sample models.Sample) models.Sentiment
}

// KeySelector derives the change key compared between consecutive samples.
type KeySelector interface {
	Name() string
	Key(sample models.Sample) string
}
