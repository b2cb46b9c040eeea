package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-link/support-agent/internal/events"
	"github.com/assist-link/support-agent/internal/intent"
	"github.com/assist-link/support-agent/internal/model"
	"github.com/assist-link/support-agent/internal/policy"
	"github.com/assist-link/support-agent/internal/sentiment"
	"github.com/assist-link/support-agent/internal/service"
	"github.com/assist-link/support-agent/internal/store"
	"github.com/assist-link/support-agent/internal/ticket"
	"github.com/assist-link/support-agent/internal/transcription"
	"github.com/assist-link/support-agent/pkg/logger"
)

type testDeps struct {
	policyCfg        policy.Config
	transcriptionCfg transcription.Config
	ticketCfg        ticket.Config
}

func newTestService(t *testing.T, deps testDeps) *service.ConversationService {
	t.Helper()

	classifier, err := intent.NewClassifier()
	require.NoError(t, err)

	log := logger.NewNop()
	return service.NewConversationService(
		store.NewMemoryStore(),
		classifier,
		sentiment.NewClassifier(),
		transcription.NewClient(deps.transcriptionCfg, log),
		ticket.NewIssuer(deps.ticketCfg, nil, log),
		policy.New(deps.policyCfg),
		events.NopPublisher{},
		log,
	)
}

func TestStart(t *testing.T) {
	svc := newTestService(t, testDeps{})

	conv, err := svc.Start(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, model.StatusActive, conv.Status)
	assert.Equal(t, model.SentimentNeutral, conv.Sentiment)
	assert.Equal(t, model.ResolutionInProgress, conv.ResolutionStatus)
	assert.False(t, conv.Escalated)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, model.RoleAssistant, conv.Messages[0].Role)
	assert.Equal(t, intent.GreetingResponse, conv.Messages[0].Content)
}

func TestHandleTurnUnknownConversation(t *testing.T) {
	svc := newTestService(t, testDeps{})

	_, err := svc.HandleTurn(context.Background(), "no-such-id", "hello")
	require.ErrorIs(t, err, store.ErrNotFound)
}

// A successful turn appends exactly two messages: the user's and the
// assistant's.
func TestHandleTurnAppendsTwoMessages(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)
	before := len(conv.Messages)

	resp, err := svc.HandleTurn(ctx, conv.ID, "hello there")
	require.NoError(t, err)

	require.Len(t, resp.Conversation.Messages, before+2)
	assert.Equal(t, model.RoleUser, resp.Conversation.Messages[before].Role)
	assert.Equal(t, model.RoleAssistant, resp.Conversation.Messages[before+1].Role)
	assert.Equal(t, resp.Response, resp.Conversation.Messages[before+1].Content)
}

func TestDueDateInquiryResolvedByAI(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "what is my due date")
	require.NoError(t, err)

	assert.Equal(t, model.SentimentNeutral, resp.Sentiment.Label)
	assert.Contains(t, resp.Response, "due date")
	assert.Equal(t, model.ResolutionAIResolved, resp.Conversation.ResolutionStatus)
	assert.Equal(t, model.StatusActive, resp.Conversation.Status)
	assert.False(t, resp.Conversation.Escalated)
	assert.Equal(t, "Due Date", resp.Conversation.Title)
}

func TestComplaintWithNegativeSentimentEscalates(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID,
		"why is my bill so high and overcharging me, this is ridiculous")
	require.NoError(t, err)

	assert.Equal(t, model.SentimentNegative, resp.Sentiment.Label)
	assert.Equal(t, model.StatusEscalated, resp.Conversation.Status)
	assert.True(t, resp.Conversation.Escalated)
	assert.Equal(t, model.ResolutionHumanFollowupRequired, resp.Conversation.ResolutionStatus)
	assert.Equal(t, model.TicketTypeComplaint, resp.Conversation.TicketType)
	assert.Equal(t, intent.EscalationResponse, resp.Response)

	// Ticket service is not configured: the ticket must still exist, with a
	// local fallback ID.
	require.NotEmpty(t, resp.Conversation.TicketID)
	assert.True(t, strings.HasPrefix(resp.Conversation.TicketID, "LOCAL-"))
}

// Once escalated, the human channel owns the conversation: further turns
// are refused and do not mutate the record.
func TestEscalatedConversationRefusesTurns(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "this is a ridiculous billing error")
	require.NoError(t, err)
	require.Equal(t, model.StatusEscalated, resp.Conversation.Status)
	messageCount := len(resp.Conversation.Messages)

	_, err = svc.HandleTurn(ctx, conv.ID, "hello?")
	require.ErrorIs(t, err, service.ErrConversationEscalated)

	got, err := svc.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, messageCount)
	assert.True(t, got.Escalated)
}

func TestConsecutiveUpsetReadingsEscalate(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	// One frustrated reading softens the tone but stays automated.
	resp, err := svc.HandleTurn(ctx, conv.ID, "I'm annoyed about my balance")
	require.NoError(t, err)
	assert.Equal(t, model.SentimentMixed, resp.Sentiment.Label)
	assert.Equal(t, model.StatusActive, resp.Conversation.Status)
	assert.True(t, strings.HasPrefix(resp.Response, intent.SoftenPrefix))

	// A second consecutive one crosses the streak threshold.
	resp, err = svc.HandleTurn(ctx, conv.ID, "I'm still annoyed, nothing works")
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated, resp.Conversation.Status)
	assert.True(t, resp.Conversation.Escalated)
	assert.NotEmpty(t, resp.Conversation.TicketID)
}

func TestMaxTurnsEscalates(t *testing.T) {
	svc := newTestService(t, testDeps{
		policyCfg: policy.Config{NegativeStreak: 2, MaxTurns: 2},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "hello there")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, resp.Conversation.Status)

	resp, err = svc.HandleTurn(ctx, conv.ID, "hello again")
	require.NoError(t, err)
	assert.Equal(t, model.StatusEscalated, resp.Conversation.Status)
}

// A conversation the agent already resolved may keep chatting calmly past
// the max-turn threshold without being escalated.
func TestMaxTurnsSkippedAfterAIResolution(t *testing.T) {
	svc := newTestService(t, testDeps{
		policyCfg: policy.Config{NegativeStreak: 2, MaxTurns: 2},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "what is my due date")
	require.NoError(t, err)
	require.Equal(t, model.ResolutionAIResolved, resp.Conversation.ResolutionStatus)

	resp, err = svc.HandleTurn(ctx, conv.ID, "when is my bill generated")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, resp.Conversation.Status)
	assert.False(t, resp.Conversation.Escalated)
	assert.Empty(t, resp.Conversation.TicketID)
}

// A max-turn escalation with calm readings throughout must not rewrite the
// customer's sentiment to negative.
func TestMaxTurnsEscalationKeepsCalmSentiment(t *testing.T) {
	svc := newTestService(t, testDeps{
		policyCfg: policy.Config{NegativeStreak: 2, MaxTurns: 2},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.HandleTurn(ctx, conv.ID, "hello there")
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "hello again")
	require.NoError(t, err)
	require.Equal(t, model.StatusEscalated, resp.Conversation.Status)
	assert.Equal(t, model.SentimentNeutral, resp.Conversation.Sentiment)
}

func TestFarewellClosesConversation(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "thanks, bye")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, resp.Conversation.Status)
	assert.Equal(t, model.ResolutionAIResolved, resp.Conversation.ResolutionStatus)
	assert.Equal(t, intent.FarewellResponse, resp.Response)

	_, err = svc.HandleTurn(ctx, conv.ID, "one more thing")
	require.ErrorIs(t, err, service.ErrConversationClosed)
}

// A farewell-driven close records a session ticket just like an explicit
// close would.
func TestFarewellCloseIssuesSessionTicket(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "thanks, bye")
	require.NoError(t, err)
	require.Equal(t, model.StatusClosed, resp.Conversation.Status)
	assert.True(t, strings.HasPrefix(resp.Conversation.TicketID, "LOCAL-"))
}

// Explicitly closing a farewell-closed conversation keeps the ticket issued
// at farewell: at most one ticket per conversation.
func TestFarewellCloseKeepsExistingTicket(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "thanks, bye")
	require.NoError(t, err)
	ticketID := resp.Conversation.TicketID
	require.NotEmpty(t, ticketID)

	closed, err := svc.Close(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, ticketID, closed.TicketID)
}

// Closed is terminal: nothing after close mutates messages or the
// escalated flag.
func TestCloseIsTerminal(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, closed.Status)
	messageCount := len(closed.Messages)

	_, err = svc.HandleTurn(ctx, conv.ID, "hello")
	require.ErrorIs(t, err, service.ErrConversationClosed)

	// Idempotent close.
	again, err := svc.Close(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, again.Status)
	assert.Len(t, again.Messages, messageCount)
	assert.False(t, again.Escalated)
}

func TestCloseUnknownConversation(t *testing.T) {
	svc := newTestService(t, testDeps{})

	_, err := svc.Close(context.Background(), "no-such-id")
	require.ErrorIs(t, err, store.ErrNotFound)
}

// Escalation is monotonic: closing an escalated conversation keeps the
// escalated flag and the original ticket.
func TestEscalationMonotonicAcrossClose(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "unauthorized charge, this is fraud")
	require.NoError(t, err)
	require.True(t, resp.Conversation.Escalated)
	ticketID := resp.Conversation.TicketID
	require.NotEmpty(t, ticketID)

	closed, err := svc.Close(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusClosed, closed.Status)
	assert.True(t, closed.Escalated)
	assert.Equal(t, ticketID, closed.TicketID, "at most one ticket per conversation")
}

func TestCloseIssuesSessionTicketWhenNone(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, conv.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(closed.TicketID, "LOCAL-"))
}

func TestExternalTicketIssuedOnEscalation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"card-789"}`))
	}))
	defer srv.Close()

	svc := newTestService(t, testDeps{
		ticketCfg: ticket.Config{APIKey: "k", Token: "t", ListID: "l", BaseURL: srv.URL},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleTurn(ctx, conv.ID, "this is a ridiculous billing mistake")
	require.NoError(t, err)
	assert.Equal(t, "card-789", resp.Conversation.TicketID)
}

func TestVoiceTurnWithoutTranscriptLeavesConversationUntouched(t *testing.T) {
	svc := newTestService(t, testDeps{}) // transcription not configured
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.HandleVoiceTurn(ctx, conv.ID, []byte("audio-bytes"))
	require.ErrorIs(t, err, service.ErrEmptyTranscript)

	got, err := svc.Get(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
	assert.Empty(t, got.SentimentHistory)
}

func TestVoiceTurnUsesAudioSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"results": {"channels": [{"alternatives": [{
				"transcript": "my refund never arrived",
				"paragraphs": {"paragraphs": [{"sentences": [
					{"sentiment": "negative"}, {"sentiment": "negative"}
				]}]}
			}]}]}
		}`))
	}))
	defer srv.Close()

	svc := newTestService(t, testDeps{
		transcriptionCfg: transcription.Config{APIKey: "key", BaseURL: srv.URL},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleVoiceTurn(ctx, conv.ID, []byte("audio-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "my refund never arrived", resp.Transcript)
	assert.Equal(t, model.SentimentNegative, resp.Sentiment.Label)
	// Complaint intent plus negative audio sentiment escalates immediately.
	assert.Equal(t, model.StatusEscalated, resp.Conversation.Status)
}

// When the audio sentiment analysis fails, the transcript's text sentiment
// still drives the policy: an angry transcript must escalate.
func TestVoiceTurnFallsBackToTextSentimentWhenAudioAnalysisFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "sentiment=true") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{
			"results": {"channels": [{"alternatives": [{
				"transcript": "this unauthorized charge is fraud and it is ridiculous"
			}]}]}
		}`))
	}))
	defer srv.Close()

	svc := newTestService(t, testDeps{
		transcriptionCfg: transcription.Config{APIKey: "key", BaseURL: srv.URL},
	})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	resp, err := svc.HandleVoiceTurn(ctx, conv.ID, []byte("audio-bytes"))
	require.NoError(t, err)

	assert.Equal(t, model.SentimentNegative, resp.Sentiment.Label)
	assert.Equal(t, model.StatusEscalated, resp.Conversation.Status)
}

// Turns for the same conversation are serialized: concurrent submissions
// never interleave or corrupt message order.
func TestConcurrentTurnsSameConversation(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	conv, err := svc.Start(ctx)
	require.NoError(t, err)

	const turns = 6
	var wg sync.WaitGroup
	wg.Add(turns)
	for i := 0; i < turns; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.HandleTurn(ctx, conv.ID, "hello there")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1+2*turns)

	// After the greeting, messages strictly alternate user/assistant.
	for i := 1; i < len(got.Messages); i += 2 {
		assert.Equal(t, model.RoleUser, got.Messages[i].Role, "message %d", i)
		assert.Equal(t, model.RoleAssistant, got.Messages[i+1].Role, "message %d", i+1)
	}
	assert.Len(t, got.SentimentHistory, turns)
}

func TestListMostRecentFirst(t *testing.T) {
	svc := newTestService(t, testDeps{})
	ctx := context.Background()

	first, err := svc.Start(ctx)
	require.NoError(t, err)
	second, err := svc.Start(ctx)
	require.NoError(t, err)

	convs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, second.ID, convs[0].ID)
	assert.Equal(t, first.ID, convs[1].ID)
}
