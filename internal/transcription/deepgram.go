// Package transcription adapts the external speech-to-text and
// audio-sentiment service. Every failure degrades to a safe default (empty
// transcript, neutral sentiment); no error from this package ever aborts a
// conversation turn.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/pkg/logger"
)

// Config holds the transcription service settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Deepgram listen API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logger.Logger
}

// NewClient creates a transcription client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

// Configured reports whether the service credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// listenResponse is the subset of the Deepgram response we read.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
				Paragraphs struct {
					Paragraphs []struct {
						Sentences []struct {
							Sentiment string `json:"sentiment"`
						} `json:"sentences"`
					} `json:"paragraphs"`
				} `json:"paragraphs"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe converts audio to text. Returns the empty string on
// misconfiguration or any service failure.
func (c *Client) Transcribe(ctx context.Context, audio []byte) string {
	if !c.Configured() {
		return ""
	}

	resp, err := c.listen(ctx, audio, "model=nova-2&language=en")
	if err != nil {
		c.logger.Warn("transcription failed, continuing without transcript", zap.Error(err))
		return ""
	}

	channels := resp.Results.Channels
	if len(channels) == 0 || len(channels[0].Alternatives) == 0 {
		return ""
	}
	return channels[0].Alternatives[0].Transcript
}

// AnalyzeSentiment scores audio sentiment. The second return reports
// whether the analysis actually ran; on misconfiguration or any service
// failure it is false and the reading is a neutral placeholder, so callers
// can fall back to their own signal.
func (c *Client) AnalyzeSentiment(ctx context.Context, audio []byte) (model.SentimentReading, bool) {
	if !c.Configured() {
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.5,
			Details:    "Audio sentiment unavailable - service not configured",
		}, false
	}

	resp, err := c.listen(ctx, audio, "sentiment=true&language=en")
	if err != nil {
		c.logger.Warn("audio sentiment analysis failed, defaulting to neutral", zap.Error(err))
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.5,
			Details:    "Audio sentiment analysis error",
		}, false
	}

	return aggregateSentiments(collectSentiments(resp)), true
}

// listen posts audio to the listen endpoint with bounded retries on
// transient failures.
func (c *Client) listen(ctx context.Context, audio []byte, query string) (*listenResponse, error) {
	var result *listenResponse

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/listen?%s", c.cfg.BaseURL, query), bytes.NewReader(audio))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Token "+c.cfg.APIKey)
		req.Header.Set("Content-Type", "audio/wav")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("listen API returned status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("listen API returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		var parsed listenResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("decode listen response: %w", err))
		}
		result = &parsed
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func collectSentiments(resp *listenResponse) []string {
	var sentiments []string
	for _, ch := range resp.Results.Channels {
		for _, alt := range ch.Alternatives {
			for _, para := range alt.Paragraphs.Paragraphs {
				for _, sentence := range para.Sentences {
					sentiments = append(sentiments, sentence.Sentiment)
				}
			}
		}
	}
	return sentiments
}

func aggregateSentiments(sentiments []string) model.SentimentReading {
	if len(sentiments) == 0 {
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.6,
			Details:    "Mixed or neutral sentiment detected",
		}
	}

	negatives, positives := 0, 0
	for _, s := range sentiments {
		switch s {
		case "negative":
			negatives++
		case "positive":
			positives++
		}
	}

	total := len(sentiments)
	switch {
	case float64(negatives)/float64(total) > 0.5:
		return model.SentimentReading{
			Label:      model.SentimentNegative,
			Confidence: float64(negatives) / float64(total),
			Details:    fmt.Sprintf("Detected negative sentiment in %d/%d segments", negatives, total),
		}
	case float64(positives)/float64(total) > 0.5:
		return model.SentimentReading{
			Label:      model.SentimentPositive,
			Confidence: float64(positives) / float64(total),
			Details:    fmt.Sprintf("Detected positive sentiment in %d/%d segments", positives, total),
		}
	default:
		return model.SentimentReading{
			Label:      model.SentimentNeutral,
			Confidence: 0.6,
			Details:    "Mixed or neutral sentiment detected",
		}
	}
}
