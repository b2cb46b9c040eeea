package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/assist-link/support-agent/pkg/logger"
)

const (
	// StreamName is the name of the support events stream.
	StreamName = "SUPPORT_EVENTS"

	// SubjectPrefix is the prefix for all conversation event subjects.
	SubjectPrefix = "support.conv"
)

// Type identifies a conversation lifecycle event.
type Type string

const (
	TypeTurnCompleted Type = "turn_completed"
	TypeEscalated     Type = "escalated"
	TypeTicketIssued  Type = "ticket_issued"
	TypeResolved      Type = "resolved"
	TypeClosed        Type = "closed"
)

// Event is one conversation lifecycle event.
type Event struct {
	ConversationID string    `json:"conversation_id"`
	Type           Type      `json:"type"`
	Reason         string    `json:"reason,omitempty"`
	TicketID       string    `json:"ticket_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Publisher emits conversation lifecycle events. Implementations must never
// block a turn on publish failure.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Subject returns the subject for an event.
func Subject(conversationID string, t Type) string {
	return fmt.Sprintf("%s.%s.event.%s", SubjectPrefix, conversationID, t)
}

// JetStreamPublisher publishes events to NATS JetStream.
type JetStreamPublisher struct {
	client *Client
	logger *logger.Logger
}

// NewJetStreamPublisher creates a publisher and ensures the events stream
// exists.
func NewJetStreamPublisher(ctx context.Context, client *Client, log *logger.Logger) (*JetStreamPublisher, error) {
	js := client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err != nil {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
			Retention:   jetstream.LimitsPolicy,
			MaxAge:      30 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
			Replicas:    1,
			Description: "Conversation lifecycle events",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
	}

	return &JetStreamPublisher{client: client, logger: log}, nil
}

// Publish emits the event. Failures are logged and swallowed.
func (p *JetStreamPublisher) Publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	if _, err := p.client.JetStream().Publish(ctx, Subject(ev.ConversationID, ev.Type), data); err != nil {
		p.logger.Warn("failed to publish event",
			zap.String("conversation_id", ev.ConversationID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// NopPublisher discards all events. Used when NATS is not configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(ctx context.Context, ev Event) {}
