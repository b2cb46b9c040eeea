package transcription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/pkg/logger"
)

const listenBody = `{
	"results": {
		"channels": [{
			"alternatives": [{
				"transcript": "my refund never arrived",
				"paragraphs": {
					"paragraphs": [{
						"sentences": [
							{"sentiment": "negative"},
							{"sentiment": "negative"},
							{"sentiment": "neutral"}
						]
					}]
				}
			}]
		}]
	}
}`

func TestTranscribeNotConfigured(t *testing.T) {
	c := NewClient(Config{}, logger.NewNop())
	assert.Equal(t, "", c.Transcribe(context.Background(), []byte("audio")))
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token key", r.Header.Get("Authorization"))
		w.Write([]byte(listenBody))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL}, logger.NewNop())
	assert.Equal(t, "my refund never arrived", c.Transcribe(context.Background(), []byte("audio")))
}

func TestTranscribeServerErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL}, logger.NewNop())
	assert.Equal(t, "", c.Transcribe(context.Background(), []byte("audio")))
}

func TestTranscribeRetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(listenBody))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL}, logger.NewNop())
	assert.Equal(t, "my refund never arrived", c.Transcribe(context.Background(), []byte("audio")))
	assert.Equal(t, 2, attempts)
}

func TestAnalyzeSentimentNotConfigured(t *testing.T) {
	c := NewClient(Config{}, logger.NewNop())

	reading, ok := c.AnalyzeSentiment(context.Background(), []byte("audio"))
	assert.False(t, ok)
	assert.Equal(t, model.SentimentNeutral, reading.Label)
	assert.LessOrEqual(t, reading.Confidence, 0.5)
}

func TestAnalyzeSentimentAggregatesSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listenBody))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "key", BaseURL: srv.URL}, logger.NewNop())
	reading, ok := c.AnalyzeSentiment(context.Background(), []byte("audio"))
	assert.True(t, ok)
	assert.Equal(t, model.SentimentNegative, reading.Label)
	assert.InDelta(t, 2.0/3.0, reading.Confidence, 0.001)
}

func TestAnalyzeSentimentFailureReportsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "bad", BaseURL: srv.URL}, logger.NewNop())
	reading, ok := c.AnalyzeSentiment(context.Background(), []byte("audio"))
	assert.False(t, ok)
	assert.Equal(t, model.SentimentNeutral, reading.Label)
}

func TestAggregateSentimentsEmpty(t *testing.T) {
	reading := aggregateSentiments(nil)
	assert.Equal(t, model.SentimentNeutral, reading.Label)
}
