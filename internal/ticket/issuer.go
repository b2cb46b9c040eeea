// Package ticket adapts the external card-based ticketing system. Issuance
// never fails: any service problem falls back to a locally generated ticket
// ID so an escalation can always complete.
package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/pkg/logger"
	"github.com/assist-link/support-agent/pkg/metrics"
)

// Config holds the ticketing service settings.
type Config struct {
	APIKey  string
	Token   string
	ListID  string
	BaseURL string
	Timeout time.Duration
}

// Summary describes the conversation being handed off.
type Summary struct {
	ConversationID string
	Title          string
	Description    string
	Labels         []string
}

// Issuer creates tickets in the external card service.
type Issuer struct {
	cfg        Config
	http       *http.Client
	summarizer *Summarizer
	logger     *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewIssuer creates a ticket issuer. The summarizer may be nil.
func NewIssuer(cfg Config, summarizer *Summarizer, log *logger.Logger) *Issuer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.trello.com/1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Issuer{
		cfg:        cfg,
		http:       &http.Client{Timeout: cfg.Timeout},
		summarizer: summarizer,
		logger:     log,
		now:        time.Now,
	}
}

// Configured reports whether the external service credentials are present.
func (i *Issuer) Configured() bool {
	return i.cfg.APIKey != "" && i.cfg.Token != "" && i.cfg.ListID != ""
}

// Issue creates a ticket for the conversation. It always returns a ticket:
// on misconfiguration, network error or a non-2xx response the ticket
// carries a locally generated ID instead.
func (i *Issuer) Issue(ctx context.Context, sum Summary) model.Ticket {
	description := sum.Description
	if i.summarizer != nil {
		description = i.summarizer.Summarize(ctx, sum)
	}

	if !i.Configured() {
		return i.local(sum, "ticket service not configured")
	}

	id, err := i.createCard(ctx, sum.Title, description, sum.Labels)
	if err != nil {
		return i.local(sum, err.Error())
	}

	metrics.TicketsIssuedTotal.WithLabelValues("external").Inc()
	return model.Ticket{
		ID:             id,
		ConversationID: sum.ConversationID,
		Reason:         sum.Title,
	}
}

func (i *Issuer) local(sum Summary, cause string) model.Ticket {
	i.logger.Warn("falling back to local ticket ID",
		zap.String("conversation_id", sum.ConversationID),
		zap.String("cause", cause),
	)
	metrics.TicketsIssuedTotal.WithLabelValues("local").Inc()
	return model.Ticket{
		ID:             fmt.Sprintf("LOCAL-%d", i.now().Unix()),
		ConversationID: sum.ConversationID,
		Reason:         sum.Title,
		Local:          true,
	}
}

func (i *Issuer) createCard(ctx context.Context, title, description string, labels []string) (string, error) {
	params := url.Values{}
	params.Set("key", i.cfg.APIKey)
	params.Set("token", i.cfg.Token)
	params.Set("idList", i.cfg.ListID)
	params.Set("name", title)
	params.Set("desc", description)
	if len(labels) > 0 {
		params.Set("labels", strings.Join(labels, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		i.cfg.BaseURL+"/cards?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("card service returned status %d", resp.StatusCode)
	}

	var card struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return "", fmt.Errorf("decode card response: %w", err)
	}
	if card.ID == "" {
		return "", fmt.Errorf("card service returned empty ID")
	}
	return card.ID, nil
}
