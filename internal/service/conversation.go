// Package service provides the conversation manager: it owns conversation
// state, sequences classification, response drafting, escalation policy and
// ticket issuance on each turn, and persists the updated record.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assist-link/support-agent/internal/events"
	"github.com/assist-link/support-agent/internal/intent"
	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/internal/policy"
	"github.com/assist-link/support-agent/internal/sentiment"
	"github.com/assist-link/support-agent/internal/store"
	"github.com/assist-link/support-agent/internal/ticket"
	"github.com/assist-link/support-agent/internal/transcription"
	"github.com/assist-link/support-agent/pkg/logger"
	"github.com/assist-link/support-agent/pkg/metrics"
)

const defaultTitle = "New Support Session"

// ConversationService orchestrates conversation turns.
type ConversationService struct {
	store       store.Store
	intents     *intent.Classifier
	sentiments  *sentiment.Classifier
	transcriber *transcription.Client
	issuer      *ticket.Issuer
	policy      *policy.Policy
	events      events.Publisher
	logger      *logger.Logger

	// locks serializes turns per conversation ID. Turns for different
	// conversations proceed in parallel.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewConversationService creates the conversation manager.
func NewConversationService(
	st store.Store,
	intents *intent.Classifier,
	sentiments *sentiment.Classifier,
	transcriber *transcription.Client,
	issuer *ticket.Issuer,
	pol *policy.Policy,
	pub events.Publisher,
	log *logger.Logger,
) *ConversationService {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &ConversationService{
		store:       st,
		intents:     intents,
		sentiments:  sentiments,
		transcriber: transcriber,
		issuer:      issuer,
		policy:      pol,
		events:      pub,
		logger:      log,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (s *ConversationService) conversationLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Start creates a new active conversation opened by the agent's greeting.
func (s *ConversationService) Start(ctx context.Context) (*model.Conversation, error) {
	now := time.Now()

	conv := &model.Conversation{
		ID:               uuid.Must(uuid.NewV7()).String(),
		Title:            defaultTitle,
		Status:           model.StatusActive,
		Sentiment:        model.SentimentNeutral,
		TicketType:       model.TicketTypeInformational,
		ResolutionStatus: model.ResolutionInProgress,
		Messages: []model.Message{
			{
				Role:      model.RoleAssistant,
				Content:   intent.GreetingResponse,
				Timestamp: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Put(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to persist conversation: %w", err)
	}

	metrics.ConversationsStartedTotal.Inc()
	metrics.ConversationsActive.Inc()
	s.logger.Info("conversation started", zap.String("conversation_id", conv.ID))

	return conv, nil
}

// HandleTurn processes a text turn: classifies sentiment and intent, drafts
// the reply, applies the escalation policy, persists and returns the
// updated conversation with the latest sentiment reading.
func (s *ConversationService) HandleTurn(ctx context.Context, conversationID, userText string) (*model.TurnResponse, error) {
	return s.handleTurn(ctx, conversationID, userText, nil, "text")
}

// HandleVoiceTurn transcribes the audio, scores audio sentiment, then
// behaves like a text turn with the audio reading taking precedence over
// the text heuristic. An untranscribable turn does not mutate the
// conversation.
func (s *ConversationService) HandleVoiceTurn(ctx context.Context, conversationID string, audio []byte) (*model.TurnResponse, error) {
	// Fail fast on unknown conversations before paying for transcription.
	if _, err := s.store.Get(ctx, conversationID); err != nil {
		return nil, err
	}

	var (
		transcript string
		reading    model.SentimentReading
		audioOK    bool
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		transcript = s.transcriber.Transcribe(ctx, audio)
	}()
	go func() {
		defer wg.Done()
		reading, audioOK = s.transcriber.AnalyzeSentiment(ctx, audio)
	}()
	wg.Wait()

	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	// When audio analysis failed the text heuristic scores the transcript
	// instead.
	var override *model.SentimentReading
	if audioOK {
		override = &reading
	}
	resp, err := s.handleTurn(ctx, conversationID, transcript, override, "voice")
	if err != nil {
		return nil, err
	}
	resp.Transcript = transcript
	return resp, nil
}

func (s *ConversationService) handleTurn(
	ctx context.Context,
	conversationID, userText string,
	override *model.SentimentReading,
	channel string,
) (*model.TurnResponse, error) {
	start := time.Now()

	l := s.conversationLock(conversationID)
	l.Lock()
	defer l.Unlock()

	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	switch conv.Status {
	case model.StatusClosed:
		return nil, ErrConversationClosed
	case model.StatusEscalated:
		return nil, ErrConversationEscalated
	}

	now := time.Now()
	conv.Messages = append(conv.Messages, model.Message{
		Role:      model.RoleUser,
		Content:   userText,
		Timestamp: now,
	})

	reading := s.sentiments.Classify(userText)
	if override != nil {
		// Audio sentiment comes from the richer external analysis.
		reading = *override
	}
	reading.Turn = conv.UserTurns()
	conv.SentimentHistory = append(conv.SentimentHistory, reading)

	in := s.intents.Classify(userText)
	reply := intent.Respond(in)

	result := s.policy.Evaluate(policy.Input{
		History:    conv.SentimentHistory,
		Intent:     in,
		Resolvable: reply.Resolvable,
		UserTurns:  conv.UserTurns(),
		Resolution: conv.ResolutionStatus,
	})

	responseText := reply.Text
	switch result.Decision {
	case policy.Escalate:
		responseText = intent.EscalationResponse
		s.escalate(ctx, conv, in, userText, reading, result.Reason)
	case policy.Resolve:
		s.resolve(ctx, conv, in, reading)
	case policy.Soften:
		responseText = intent.SoftenPrefix + responseText
		conv.Sentiment = reading.Label
	default:
		conv.Sentiment = reading.Label
	}

	conv.Messages = append(conv.Messages, model.Message{
		Role:      model.RoleAssistant,
		Content:   responseText,
		Timestamp: time.Now(),
	})
	conv.UpdatedAt = time.Now()

	if err := s.store.Put(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to persist conversation: %w", err)
	}

	s.events.Publish(ctx, events.Event{
		ConversationID: conv.ID,
		Type:           events.TypeTurnCompleted,
		Reason:         result.Reason,
		CreatedAt:      time.Now(),
	})

	metrics.RecordTurn(channel, string(reading.Label), result.Decision.String(), time.Since(start).Seconds())
	s.logger.Info("turn processed",
		zap.String("conversation_id", conv.ID),
		zap.String("channel", channel),
		zap.String("intent", string(in.Category)+"/"+string(in.Topic)),
		zap.String("sentiment", string(reading.Label)),
		zap.String("decision", result.Decision.String()),
	)

	return &model.TurnResponse{
		Conversation: conv,
		Sentiment:    &reading,
		Response:     responseText,
	}, nil
}

// escalate transitions the conversation to the human channel and issues a
// ticket. Escalation is terminal for automated replies and monotonic.
func (s *ConversationService) escalate(
	ctx context.Context,
	conv *model.Conversation,
	in intent.Intent,
	userText string,
	reading model.SentimentReading,
	reason string,
) {
	conv.Status = model.StatusEscalated
	conv.Escalated = true
	// Sentiment-driven escalations record negative; a max-turn escalation
	// keeps the customer's actual reading.
	if reading.Label.IsUpset() {
		conv.Sentiment = model.SentimentNegative
	} else {
		conv.Sentiment = reading.Label
	}
	conv.TicketType = model.TicketTypeComplaint
	conv.ResolutionStatus = model.ResolutionHumanFollowupRequired
	topicLabel := in.TopicLabel()
	conv.Title = topicLabel
	conv.Summary = fmt.Sprintf(
		"Customer reported %s and showed dissatisfaction. Escalated to human agent.",
		strings.ReplaceAll(string(in.Topic), "_", " "),
	)

	metrics.ConversationsActive.Dec()
	metrics.EscalationsTotal.Inc()

	// At most one issuance attempt per conversation.
	if conv.TicketID == "" {
		tk := s.issuer.Issue(ctx, ticket.Summary{
			ConversationID: conv.ID,
			Title:          "ESCALATED: " + topicLabel,
			Description: fmt.Sprintf(
				"Customer Query: %s\n\n"+
					"Sentiment: %s - Dissatisfaction detected\n"+
					"Escalation: YES - Human follow-up required within 30 minutes\n"+
					"Trigger: %s\n"+
					"Topic: %s",
				userText, strings.ToUpper(string(reading.Label)), reason, topicLabel,
			),
			Labels: []string{"urgent", "escalated"},
		})
		conv.TicketID = tk.ID

		s.events.Publish(ctx, events.Event{
			ConversationID: conv.ID,
			Type:           events.TypeTicketIssued,
			TicketID:       tk.ID,
			CreatedAt:      time.Now(),
		})
	}

	s.events.Publish(ctx, events.Event{
		ConversationID: conv.ID,
		Type:           events.TypeEscalated,
		Reason:         reason,
		TicketID:       conv.TicketID,
		CreatedAt:      time.Now(),
	})

	s.logger.Warn("conversation escalated",
		zap.String("conversation_id", conv.ID),
		zap.String("ticket_id", conv.TicketID),
		zap.String("reason", reason),
	)
}

// resolve marks the conversation AI-resolved. A farewell also closes it.
func (s *ConversationService) resolve(ctx context.Context, conv *model.Conversation, in intent.Intent, reading model.SentimentReading) {
	conv.ResolutionStatus = model.ResolutionAIResolved
	conv.Sentiment = reading.Label
	if in.Category == intent.CategoryInformational && in.Topic != intent.TopicGeneralInquiry {
		conv.Title = in.TopicLabel()
		conv.Summary = fmt.Sprintf(
			"User asked about %s. Query resolved by AI agent.",
			strings.ReplaceAll(string(in.Topic), "_", " "),
		)
	}

	if in.Category == intent.CategoryFarewell {
		conv.Status = model.StatusClosed
		if conv.Title == defaultTitle {
			conv.Title = "Support Session"
		}
		conv.Summary = "Customer ended conversation. Query resolved by AI agent."
		metrics.ConversationsActive.Dec()

		if conv.TicketID == "" {
			tk := s.issuer.Issue(ctx, ticket.Summary{
				ConversationID: conv.ID,
				Title:          "Resolved: " + conv.Title,
				Description: fmt.Sprintf(
					"Conversation closed by customer.\nMessages: %d\nSentiment: %s\nResolution: %s",
					len(conv.Messages), conv.Sentiment, conv.ResolutionStatus,
				),
			})
			conv.TicketID = tk.ID
		}

		s.events.Publish(ctx, events.Event{
			ConversationID: conv.ID,
			Type:           events.TypeClosed,
			Reason:         "customer farewell",
			TicketID:       conv.TicketID,
			CreatedAt:      time.Now(),
		})
		return
	}

	s.events.Publish(ctx, events.Event{
		ConversationID: conv.ID,
		Type:           events.TypeResolved,
		CreatedAt:      time.Now(),
	})
}

// Close sets the conversation to closed. Idempotent: closing a closed
// conversation is a no-op. A session summary ticket is issued if the
// conversation never produced one.
func (s *ConversationService) Close(ctx context.Context, conversationID string) (*model.Conversation, error) {
	l := s.conversationLock(conversationID)
	l.Lock()
	defer l.Unlock()

	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if conv.Status == model.StatusClosed {
		return conv, nil
	}

	if conv.Status == model.StatusActive {
		metrics.ConversationsActive.Dec()
	}
	conv.Status = model.StatusClosed
	conv.UpdatedAt = time.Now()

	if conv.TicketID == "" {
		tk := s.issuer.Issue(ctx, ticket.Summary{
			ConversationID: conv.ID,
			Title:          "Session: " + conv.Title,
			Description: fmt.Sprintf(
				"Conversation closed.\nMessages: %d\nSentiment: %s\nResolution: %s",
				len(conv.Messages), conv.Sentiment, conv.ResolutionStatus,
			),
		})
		conv.TicketID = tk.ID
	}

	if err := s.store.Put(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to persist conversation: %w", err)
	}

	s.events.Publish(ctx, events.Event{
		ConversationID: conv.ID,
		Type:           events.TypeClosed,
		Reason:         "explicit close",
		TicketID:       conv.TicketID,
		CreatedAt:      time.Now(),
	})

	s.logger.Info("conversation closed", zap.String("conversation_id", conv.ID))
	return conv, nil
}

// Get retrieves a conversation by ID.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*model.Conversation, error) {
	return s.store.Get(ctx, conversationID)
}

// List retrieves all conversations, most recently created first.
func (s *ConversationService) List(ctx context.Context) ([]*model.Conversation, error) {
	return s.store.List(ctx)
}

// AnalyzeText exposes the text sentiment classifier for the standalone
// sentiment endpoint.
func (s *ConversationService) AnalyzeText(text string) model.SentimentReading {
	return s.sentiments.Classify(text)
}

// AnalyzeAudio exposes the audio sentiment analysis for the standalone
// sentiment endpoint. The neutral placeholder is returned as-is when the
// analysis is unavailable.
func (s *ConversationService) AnalyzeAudio(ctx context.Context, audio []byte) model.SentimentReading {
	reading, _ := s.transcriber.AnalyzeSentiment(ctx, audio)
	return reading
}
