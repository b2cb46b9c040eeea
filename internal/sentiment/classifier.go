// Package sentiment scores customer utterances with a local keyword
// heuristic. It never fails: unrecognized or empty input classifies as
// neutral with low confidence.
package sentiment

import (
	"strings"

	"github.com/assist-link/support-agent/internal/model"
)

var negativeWords = []string{
	"angry", "frustrated", "annoyed", "terrible", "horrible", "worst",
	"hate", "ridiculous", "unacceptable", "disgusting", "furious",
	"outraged", "stupid", "useless", "pathetic", "scam", "fraud",
	"steal", "cheat", "liar", "incompetent", "never", "nothing", "waste",
}

var strongNegativeWords = []string{
	"furious", "outraged", "scam", "fraud", "steal", "cheat",
	"liar", "pathetic", "disgusting", "ridiculous", "unacceptable",
}

var positiveWords = []string{
	"thank", "thanks", "great", "perfect", "helpful", "awesome",
	"appreciate", "good", "wonderful", "excellent",
}

// Classifier scores text sentiment. The zero value is ready to use.
type Classifier struct{}

// NewClassifier creates a text sentiment classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify maps text to a sentiment label with confidence. Turn index is
// filled in by the caller that owns the conversation history.
func (c *Classifier) Classify(text string) model.SentimentReading {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.3,
			Details:    "No content to analyze",
		}
	}

	negatives := countMatches(lower, negativeWords)
	strongNegatives := countMatches(lower, strongNegativeWords)
	positives := countMatches(lower, positiveWords)

	switch {
	case strongNegatives > 0 || negatives >= 3:
		return model.SentimentReading{
			Label:      model.SentimentNegative,
			Confidence: 0.95,
			Details:    "High dissatisfaction detected. Customer shows strong negative emotions.",
		}
	case negatives >= 1 && positives >= 1:
		return model.SentimentReading{
			Label:      model.SentimentMixed,
			Confidence: 0.7,
			Details:    "Mixed signals detected. Monitoring for escalation.",
		}
	case negatives >= 1:
		return model.SentimentReading{
			Label:      model.SentimentMixed,
			Confidence: 0.7,
			Details:    "Some frustration detected. Monitoring for escalation.",
		}
	case positives >= 1:
		return model.SentimentReading{
			Label:      model.SentimentPositive,
			Confidence: 0.8,
			Details:    "Customer appears calm and engaged.",
		}
	default:
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.6,
			Details:    "No strong sentiment signals detected.",
		}
	}
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
