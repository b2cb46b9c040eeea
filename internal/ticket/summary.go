package ticket

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/assist-link/support-agent/internal/llm"
	"github.com/assist-link/support-agent/pkg/logger"
)

// Summarizer drafts the ticket description a human agent reads. When an LLM
// client is configured it rewrites the deterministic template into a short
// brief; on any failure it returns the template unchanged.
type Summarizer struct {
	client  llm.Client
	timeout time.Duration
	logger  *logger.Logger
}

// NewSummarizer creates a summarizer. A nil client means template-only.
func NewSummarizer(client llm.Client, log *logger.Logger) *Summarizer {
	return &Summarizer{
		client:  client,
		timeout: 10 * time.Second,
		logger:  log,
	}
}

// Summarize produces the ticket description for a hand-off.
func (s *Summarizer) Summarize(ctx context.Context, sum Summary) string {
	if s.client == nil {
		return sum.Description
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Messages: []llm.ChatMessage{
			{
				Role: "user",
				Content: "Rewrite the following support hand-off notes as a concise brief " +
					"for the human agent taking over. Keep every fact, drop nothing:\n\n" +
					sum.Description,
			},
		},
		MaxTokens: 512,
	})
	if err != nil || resp.Content == "" {
		s.logger.Warn("ticket summary generation failed, using template",
			zap.String("conversation_id", sum.ConversationID),
			zap.Error(err),
		)
		return sum.Description
	}
	return resp.Content
}
