// Package model defines data structures for the support agent.
package model

import (
	"time"
)

// Status represents the lifecycle state of a conversation.
type Status string

const (
	StatusActive    Status = "active"
	StatusEscalated Status = "escalated"
	StatusClosed    Status = "closed"
)

// TicketType classifies the nature of a conversation.
type TicketType string

const (
	TicketTypeInformational TicketType = "informational"
	TicketTypeComplaint     TicketType = "complaint"
)

// ResolutionStatus is the outcome classification of a conversation.
type ResolutionStatus string

const (
	ResolutionInProgress            ResolutionStatus = "in_progress"
	ResolutionAIResolved            ResolutionStatus = "ai_resolved"
	ResolutionHumanFollowupRequired ResolutionStatus = "human_followup_required"
)

// Conversation represents a support session between a customer and the agent.
type Conversation struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Status           Status             `json:"status"`
	Sentiment        SentimentLabel     `json:"sentiment"`
	TicketID         string             `json:"ticket_id,omitempty"`
	TicketType       TicketType         `json:"ticket_type"`
	ResolutionStatus ResolutionStatus   `json:"resolution_status"`
	Escalated        bool               `json:"escalated"`
	Messages         []Message          `json:"messages"`
	SentimentHistory []SentimentReading `json:"sentiment_history,omitempty"`
	Summary          string             `json:"summary,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// UserTurns counts user messages in the conversation.
func (c *Conversation) UserTurns() int {
	n := 0
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the conversation. The store hands out
// clones so callers never alias the stored record.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	cp.SentimentHistory = make([]SentimentReading, len(c.SentimentHistory))
	copy(cp.SentimentHistory, c.SentimentHistory)
	return &cp
}

// TurnRequest is the request to submit a text turn.
type TurnRequest struct {
	Message string `json:"message"`
}

// TurnResponse is the full result of a processed turn.
type TurnResponse struct {
	Conversation *Conversation     `json:"conversation"`
	Sentiment    *SentimentReading `json:"sentiment"`
	Response     string            `json:"response"`
	Transcript   string            `json:"transcript,omitempty"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
}
