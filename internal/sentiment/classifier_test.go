package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assist-link/support-agent/internal/model"
)

func TestClassifyNegative(t *testing.T) {
	c := NewClassifier()

	tests := []string{
		"this is ridiculous",
		"I am furious about this fraud",
		"terrible, horrible, worst service ever, I hate it",
	}
	for _, text := range tests {
		reading := c.Classify(text)
		assert.Equal(t, model.SentimentNegative, reading.Label, text)
		assert.GreaterOrEqual(t, reading.Confidence, 0.9, text)
	}
}

func TestClassifyMixed(t *testing.T) {
	c := NewClassifier()

	reading := c.Classify("I am a bit annoyed about my bill")
	assert.Equal(t, model.SentimentMixed, reading.Label)
}

func TestClassifyPositive(t *testing.T) {
	c := NewClassifier()

	reading := c.Classify("thanks, that was really helpful")
	assert.Equal(t, model.SentimentPositive, reading.Label)
}

func TestClassifyNeutral(t *testing.T) {
	c := NewClassifier()

	reading := c.Classify("what is my due date")
	assert.Equal(t, model.SentimentNeutral, reading.Label)
}

// The classifier is total: empty and unrecognized input classify as neutral
// with low confidence instead of failing.
func TestClassifyEmpty(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{"", "   ", "\n\t"} {
		reading := c.Classify(text)
		assert.Equal(t, model.SentimentNeutral, reading.Label)
		assert.LessOrEqual(t, reading.Confidence, 0.5)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier()

	first := c.Classify("this scam is unacceptable")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify("this scam is unacceptable"))
	}
}
