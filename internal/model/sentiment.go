package model

// SentimentLabel is the coarse emotional classification of an utterance.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
	SentimentMixed    SentimentLabel = "mixed"
)

// IsUpset reports whether the label indicates customer dissatisfaction.
func (l SentimentLabel) IsUpset() bool {
	return l == SentimentNegative || l == SentimentMixed
}

// SentimentReading is one scored observation of customer sentiment.
// Readings belong to a single conversation's history and are never shared.
type SentimentReading struct {
	Label      SentimentLabel `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Details    string         `json:"details,omitempty"`
	Turn       int            `json:"turn"`
}
